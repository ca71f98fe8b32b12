package utils

import (
	"go-musician-booking/core/constants"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// GenerateToken returns an unguessable signing token for contract links.
func GenerateToken() (string, error) {
	return gonanoid.Generate(constants.TokenAlphabet, constants.TokenLength)
}

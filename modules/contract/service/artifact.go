package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go-musician-booking/core/storage"

	"github.com/google/uuid"
)

const (
	SagaContract       = "contract"
	StepArtifactUpload = "contract.artifact.upload"
)

// SignatureArtifact is the evidence stored for a signed contract.
type SignatureArtifact struct {
	Kind       string    `json:"kind"`
	ID         uuid.UUID `json:"id"`
	MusicianID uuid.UUID `json:"musician_id"`
	SignerName string    `json:"signer_name"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	Dates      []string  `json:"dates"`
	TotalFee   int64     `json:"total_fee"`
	Terms      string    `json:"terms"`
	SignedAt   time.Time `json:"signed_at"`
}

// Seal encodes the artifact and returns its body with the hex SHA-256 of it.
func (a SignatureArtifact) Seal() ([]byte, string, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, "", err
	}
	sum := sha256.Sum256(body)
	return body, hex.EncodeToString(sum[:]), nil
}

type artifactPayload struct {
	Key  string          `json:"key"`
	Body json.RawMessage `json:"body"`
}

func uploadArtifactStep(store storage.ArtifactStore) func(ctx context.Context, payload json.RawMessage) error {
	return func(ctx context.Context, payload json.RawMessage) error {
		var p artifactPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		return store.Put(ctx, p.Key, p.Body, "application/json")
	}
}

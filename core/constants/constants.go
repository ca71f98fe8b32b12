package constants

import "time"

const (
	DefaultRequestTimeout = 10 * time.Second
	ShutdownTimeout       = 15 * time.Second
)

const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

const (
	ContextTokenData = "token_data"
	ScopeTokenAccess = "access"
)

const (
	DateLayout = "2006-01-02"
	// MaxAvailabilityRangeDays bounds GET availability range queries.
	MaxAvailabilityRangeDays = 366
)

const (
	TokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	TokenLength   = 40
)

const (
	RedisKeyRespondAttempt = "contract:respond:"
	TaskSagaReplay         = "saga:replay"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100
)

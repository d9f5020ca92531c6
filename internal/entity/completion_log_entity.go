package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	CompletionStatusOK     = "ok"
	CompletionStatusFailed = "failed"
)

type CompletionLog struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	Provider      string
	PromptChars   int
	ResponseChars int
	Citations     []string
	Status        string
	Error         string
	LatencyMs     int64
	CreatedAt     time.Time
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CompletionLog struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	Provider      string         `gorm:"type:varchar(50);not null"`
	PromptChars   int            `gorm:"not null"`
	ResponseChars int            `gorm:"not null"`
	Citations     datatypes.JSON // Stripped [doc..] markers
	Status        string         `gorm:"type:varchar(20);not null"`
	Error         string         `gorm:"type:text"`
	LatencyMs     int64          `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index"`
}

func (CompletionLog) TableName() string {
	return "completion_logs"
}

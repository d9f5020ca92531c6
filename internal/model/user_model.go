package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	FullName      string         `gorm:"type:varchar(255);not null"`
	Email         string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash  string         `gorm:"type:varchar(255);not null"`
	Conversations []Conversation `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type InsightSession struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubjectId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	DocumentIds datatypes.JSON `gorm:"type:jsonb"`
	Status      string         `gorm:"type:varchar(16);not null;default:PENDING"`
	Result      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (InsightSession) TableName() string {
	return "insight_sessions"
}

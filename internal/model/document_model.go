package model

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubjectId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename   string    `gorm:"type:varchar(512);not null"`
	StorageKey string    `gorm:"type:varchar(1024);not null"`
	Status     string    `gorm:"type:varchar(32);not null;default:UPLOADED;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}

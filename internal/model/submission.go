package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission is a casting call posted by an approved hirer.
type Submission struct {
	ID          uuid.UUID `json:"_id" gorm:"type:char(36);primaryKey"`
	HirerID     uuid.UUID `json:"-" gorm:"type:char(36);not null;index"`
	Subject     string    `json:"subject" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Hirer Account `json:"-" gorm:"foreignKey:HirerID"`
}

// BeforeCreate sets UUID before creating the record.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

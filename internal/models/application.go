package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationSubmission: заявка на НОК, принятая с лендинга.
type ApplicationSubmission struct {
	gorm.Model `json:"-"`

	Reference   uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"reference"`
	SubmittedAt time.Time `json:"submitted_at"`

	FullName       string         `gorm:"size:100;not null" json:"full_name"`
	Email          string         `gorm:"size:255;not null" json:"email"`
	Phone          string         `gorm:"size:20;not null" json:"phone"`
	Specialization Specialization `gorm:"type:varchar(50);not null" json:"specialization"`
	Company        string         `gorm:"size:200" json:"company,omitempty"`
	Experience     Experience     `gorm:"type:varchar(10)" json:"experience,omitempty"`
	Message        string         `gorm:"type:text" json:"message,omitempty"`
	Consent        bool           `gorm:"not null" json:"consent"`

	ClientIP string `gorm:"size:64" json:"client_ip,omitempty"`
}

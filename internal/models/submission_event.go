package models

import "time"

type SubmissionOutcome string

const (
	OutcomeAccepted SubmissionOutcome = "accepted"
	OutcomeRejected SubmissionOutcome = "rejected"
	OutcomeFailed   SubmissionOutcome = "failed"
)

// SubmissionEvent: журнал всех попыток отправки формы, включая отклонённые.
type SubmissionEvent struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time

	Outcome   SubmissionOutcome `gorm:"type:varchar(20);not null"`
	Reference string            `gorm:"size:36"` // пусто для отклонённых
	Fields    string            `gorm:"size:255"` // поля с ошибками через запятую
	ClientIP  string            `gorm:"size:64"`
	Details   string            `gorm:"type:text"`
}

package intake

import (
	"context"
	"fmt"
	"time"

	"nok-landing/internal/metrics"
	"nok-landing/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Recorder принимает одобренную заявку: база, очередь, CRM, уведомления.
type Recorder interface {
	Record(ctx context.Context, sub *models.ApplicationSubmission) error
}

// Named: опционально, имя получателя для логов и метрик.
type Named interface {
	Name() string
}

type Status int

const (
	Rejected Status = iota
	Accepted
)

func (s Status) String() string {
	if s == Accepted {
		return string(models.OutcomeAccepted)
	}
	return string(models.OutcomeRejected)
}

// Outcome: итог обработки заявки: Accepted с номером или Rejected с ошибками.
type Outcome struct {
	Status     Status
	Reference  uuid.UUID
	Submission *models.ApplicationSubmission
	Errors     Errors
}

func (o Outcome) Accepted() bool { return o.Status == Accepted }

// Service: обработчик заявок. Без store одобренная заявка никуда не сохраняется.
type Service struct {
	store     Recorder
	notifiers []Recorder
	log       *logrus.Entry
	now       func() time.Time
}

func NewService(store Recorder, notifiers []Recorder, log *logrus.Entry) *Service {
	return &Service{
		store:     store,
		notifiers: notifiers,
		log:       log,
		now:       time.Now,
	}
}

// Submit валидирует заявку и, если она корректна, передаёт её получателям.
// Ошибка возвращается только при сбое store; ошибки полей: часть Outcome.
func (s *Service) Submit(ctx context.Context, values Values, clientIP string) (Outcome, error) {
	sub, errs := Validate(values)
	if len(errs) > 0 {
		for field, list := range errs {
			for _, fe := range list {
				metrics.ValidationErrorsTotal.WithLabelValues(field, string(fe.Kind)).Inc()
			}
		}
		metrics.SubmissionsTotal.WithLabelValues(Rejected.String()).Inc()
		s.log.WithFields(logrus.Fields{
			"fields":    errs.Fields(),
			"client_ip": clientIP,
		}).Info("application rejected")
		return Outcome{Status: Rejected, Errors: errs}, nil
	}

	sub.Reference = uuid.New()
	sub.SubmittedAt = s.now().UTC()
	sub.ClientIP = clientIP

	if s.store != nil {
		if err := s.store.Record(ctx, sub); err != nil {
			metrics.SubmissionsTotal.WithLabelValues(string(models.OutcomeFailed)).Inc()
			metrics.DeliveryFailuresTotal.WithLabelValues(nameOf(s.store)).Inc()
			return Outcome{}, fmt.Errorf("intake: store application: %w", err)
		}
	}

	Deliver(ctx, s.log, s.notifiers, sub)

	metrics.SubmissionsTotal.WithLabelValues(Accepted.String()).Inc()
	s.log.WithFields(logrus.Fields{
		"reference":      sub.Reference.String(),
		"specialization": sub.Specialization,
	}).Info("application accepted")

	return Outcome{Status: Accepted, Reference: sub.Reference, Submission: sub}, nil
}

// Deliver раздаёт заявку всем получателям; сбой одного не мешает остальным.
// Возвращает число неудачных доставок.
func Deliver(ctx context.Context, log *logrus.Entry, recorders []Recorder, sub *models.ApplicationSubmission) int {
	failed := 0
	for _, r := range recorders {
		if err := r.Record(ctx, sub); err != nil {
			failed++
			metrics.DeliveryFailuresTotal.WithLabelValues(nameOf(r)).Inc()
			log.WithError(err).WithFields(logrus.Fields{
				"sink":      nameOf(r),
				"reference": sub.Reference.String(),
			}).Warn("application delivery failed")
		}
	}
	return failed
}

func nameOf(r Recorder) string {
	if n, ok := r.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", r)
}

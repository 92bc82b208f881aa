package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nok-landing/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	DefaultKey    = "nok:applications"
	processingKey = "%s:processing"
	statusKey     = "nok:application_status:%s"
	statusTTL     = 24 * time.Hour
)

const (
	StatusQueued    = "queued"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// DeliverFunc доставляет заявку, вынутую из очереди.
type DeliverFunc func(ctx context.Context, sub *models.ApplicationSubmission) error

// Queue: очередь одобренных заявок в Redis: сайт кладёт, фоновый обработчик забирает.
// Заявка лежит в списке processing, пока её статус не записан, поэтому остановка или падение
// посреди доставки не теряет её.
type Queue struct {
	client      *redis.Client
	key         string
	processing  string
	pollTimeout time.Duration
	log         *logrus.Entry
}

func New(client *redis.Client, log *logrus.Entry) *Queue {
	return &Queue{
		client:      client,
		key:         DefaultKey,
		processing:  fmt.Sprintf(processingKey, DefaultKey),
		pollTimeout: time.Second,
		log:         log,
	}
}

func (q *Queue) Name() string { return "redis" }

// Record ставит заявку в очередь.
func (q *Queue) Record(ctx context.Context, sub *models.ApplicationSubmission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("queue: failed to marshal application: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.RPush(ctx, q.key, data)
	pipe.Set(ctx, statusKeyFor(sub.Reference.String()), StatusQueued, statusTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue: failed to enqueue application: %w", err)
	}
	return nil
}

// ErrUnknownReference: статус истёк или заявки с таким номером не было.
var ErrUnknownReference = errors.New("queue: неизвестный номер заявки")

func (q *Queue) Status(ctx context.Context, reference string) (string, error) {
	status, err := q.client.Get(ctx, statusKeyFor(reference)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnknownReference
	}
	return status, err
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Consume обрабатывает очередь до отмены контекста. Сначала возвращает в очередь
// заявки, брошенные прошлым процессом в processing.
func (q *Queue) Consume(ctx context.Context, deliver DeliverFunc) {
	q.log.Info("queue consumer started")

	if n, err := q.Requeue(ctx); err != nil {
		q.log.WithError(err).Error("failed to requeue abandoned applications")
	} else if n > 0 {
		q.log.WithField("count", n).Warn("requeued abandoned applications")
	}

	for {
		if ctx.Err() != nil {
			q.log.Info("queue consumer stopped")
			return
		}
		if _, err := q.ProcessOne(ctx, deliver); err != nil && ctx.Err() == nil {
			q.log.WithError(err).Error("error polling queue")
			time.Sleep(q.pollTimeout)
		}
	}
}

// Requeue переносит все заявки из processing в начало очереди.
func (q *Queue) Requeue(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.client.LMove(ctx, q.processing, q.key, "RIGHT", "LEFT").Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("queue: failed to requeue: %w", err)
		}
		n++
	}
}

// ProcessOne ждёт одну заявку не дольше pollTimeout и возвращает false, если очередь пуста.
// Если доставку прервала отмена ctx, заявка возвращается в начало очереди.
func (q *Queue) ProcessOne(ctx context.Context, deliver DeliverFunc) (bool, error) {
	raw, err := q.client.BLMove(ctx, q.key, q.processing, "LEFT", "RIGHT", q.pollTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// запись статуса и уборка не должны срываться из-за остановки
	bg := context.WithoutCancel(ctx)

	var sub models.ApplicationSubmission
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		q.log.WithError(err).Error("error unmarshaling application")
		if err := q.client.LRem(bg, q.processing, 1, raw).Err(); err != nil {
			return true, fmt.Errorf("queue: failed to drop broken entry: %w", err)
		}
		return true, nil
	}
	log := q.log.WithField("reference", sub.Reference.String())

	deliverErr := deliver(ctx, &sub)
	if deliverErr != nil && ctx.Err() != nil {
		pipe := q.client.TxPipeline()
		pipe.LRem(bg, q.processing, 1, raw)
		pipe.LPush(bg, q.key, raw)
		if _, err := pipe.Exec(bg); err != nil {
			return true, fmt.Errorf("queue: failed to return interrupted application: %w", err)
		}
		log.WithError(deliverErr).Warn("delivery interrupted, application returned to queue")
		return true, ctx.Err()
	}

	status := StatusCompleted
	if deliverErr != nil {
		status = StatusFailed
		log.WithError(deliverErr).Warn("failed to process application")
	}

	pipe := q.client.TxPipeline()
	pipe.Set(bg, statusKeyFor(sub.Reference.String()), status, statusTTL)
	pipe.LRem(bg, q.processing, 1, raw)
	if _, err := pipe.Exec(bg); err != nil {
		return true, fmt.Errorf("queue: failed to update status: %w", err)
	}
	return true, nil
}

func statusKeyFor(reference string) string {
	return fmt.Sprintf(statusKey, reference)
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"nok-landing/internal/queue"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type StatusReader interface {
	Status(ctx context.Context, reference string) (string, error)
}

// Tracking отдаёт состояние доставки заявки из очереди.
type Tracking struct {
	statuses StatusReader
	log      *logrus.Entry
}

func NewTracking(statuses StatusReader, log *logrus.Entry) *Tracking {
	return &Tracking{statuses: statuses, log: log}
}

func (h *Tracking) ApplicationStatus(c *gin.Context) {
	ref, err := uuid.Parse(c.Param("reference"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "некорректный номер заявки"})
		return
	}

	status, err := h.statuses.Status(c.Request.Context(), ref.String())
	if errors.Is(err, queue.ErrUnknownReference) {
		c.JSON(http.StatusNotFound, gin.H{"reference": ref.String(), "delivery": "unknown"})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("failed to read delivery status")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "не удалось получить статус"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reference": ref.String(), "delivery": status})
}

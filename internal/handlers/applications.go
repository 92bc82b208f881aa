package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"nok-landing/internal/database"
	"nok-landing/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const listLimit = 200

type ApplicationStore interface {
	List(ctx context.Context, limit int) ([]models.ApplicationSubmission, error)
	Get(ctx context.Context, id uint) (*models.ApplicationSubmission, error)
}

type EventStore interface {
	ListEvents(ctx context.Context, limit int) ([]models.SubmissionEvent, error)
}

// Admin: просмотр заявок и журнала отправок.
type Admin struct {
	applications ApplicationStore
	events       EventStore
	log          *logrus.Entry
}

func NewAdmin(applications ApplicationStore, events EventStore, log *logrus.Entry) *Admin {
	return &Admin{
		applications: applications,
		events:       events,
		log:          log,
	}
}

func (h *Admin) ListApplications(c *gin.Context) {
	apps, err := h.applications.List(c.Request.Context(), listLimit)
	if err != nil {
		h.log.WithError(err).Error("failed to list applications")
		c.String(http.StatusInternalServerError, "Ошибка загрузки заявок")
		return
	}

	render(c, http.StatusOK, "admin_applications.html", gin.H{
		"applications": apps,
	})
}

func (h *Admin) ShowApplication(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		c.String(http.StatusBadRequest, "Некорректный ID заявки")
		return
	}

	app, err := h.applications.Get(c.Request.Context(), uint(id))
	if errors.Is(err, database.ErrNotFound) {
		c.String(http.StatusNotFound, "Заявка не найдена")
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("id", id).Error("failed to load application")
		c.String(http.StatusInternalServerError, "Ошибка загрузки заявки")
		return
	}

	render(c, http.StatusOK, "admin_application.html", gin.H{
		"application": app,
	})
}

func (h *Admin) ListEvents(c *gin.Context) {
	events, err := h.events.ListEvents(c.Request.Context(), listLimit)
	if err != nil {
		h.log.WithError(err).Error("failed to list submission events")
		c.String(http.StatusInternalServerError, "Ошибка загрузки журнала")
		return
	}

	render(c, http.StatusOK, "admin_events.html", gin.H{
		"events": events,
	})
}

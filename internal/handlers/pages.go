package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"nok-landing/internal/intake"
	"nok-landing/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgAccepted    = "Ваша заявка успешно отправлена! Мы свяжемся с вами в ближайшее время."
	msgRejected    = "Пожалуйста, исправьте ошибки в форме."
	msgStoreFailed = "Не удалось сохранить заявку. Попробуйте ещё раз позже или позвоните нам."
)

// maxBodySize: заявка из десятка коротких полей, всё больше отбрасываем.
const maxBodySize = 64 << 10

type Submitter interface {
	Submit(ctx context.Context, values intake.Values, clientIP string) (intake.Outcome, error)
}

type EventLogger interface {
	LogEvent(ctx context.Context, ev *models.SubmissionEvent) error
}

// Pages: публичная часть: лендинг, консультация, приём заявок.
type Pages struct {
	intake      Submitter
	events      EventLogger
	telegramURL string
	log         *logrus.Entry
}

// NewPages: events может быть nil, тогда журнал попыток не ведётся.
// botUsername даёт ссылку "Написать в Telegram" на странице консультации.
func NewPages(intake Submitter, events EventLogger, botUsername string, log *logrus.Entry) *Pages {
	return &Pages{
		intake:      intake,
		events:      events,
		telegramURL: telegramLink(botUsername),
		log:         log,
	}
}

func telegramLink(botUsername string) string {
	name := strings.TrimPrefix(strings.TrimSpace(botUsername), "@")
	if name == "" {
		return ""
	}
	return "https://t.me/" + name
}

func (h *Pages) Index(c *gin.Context) {
	render(c, http.StatusOK, "index.html", formData(intake.Values{}, intake.Errors{}))
}

func (h *Pages) Consultation(c *gin.Context) {
	render(c, http.StatusOK, "consultation.html", gin.H{"telegramURL": h.telegramURL})
}

func (h *Pages) Submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "Некорректные данные формы")
		return
	}
	values := intake.FromForm(c.Request.PostForm)

	out, err := h.intake.Submit(c.Request.Context(), values, c.ClientIP())
	if err != nil {
		h.recordEvent(c, models.OutcomeFailed, out, err)
		h.log.WithError(err).Error("failed to store application")
		render(c, http.StatusInternalServerError, "error.html", gin.H{"message": msgStoreFailed})
		return
	}
	h.recordEvent(c, outcomeOf(out), out, nil)

	if out.Accepted() {
		addFlash(c, flashSuccess, msgAccepted)
		c.Redirect(http.StatusFound, "/")
		return
	}

	addFlash(c, flashError, msgRejected)
	render(c, http.StatusBadRequest, "index.html", formData(values, out.Errors))
}

func (h *Pages) SubmitAPI(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var raw map[string]interface{}
	if err := json.NewDecoder(c.Request.Body).Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"status": "error", "error": "слишком большой запрос"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "некорректный JSON"})
		return
	}

	out, err := h.intake.Submit(c.Request.Context(), valuesFromJSON(raw), c.ClientIP())
	if err != nil {
		h.recordEvent(c, models.OutcomeFailed, out, err)
		h.log.WithError(err).Error("failed to store application")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "не удалось сохранить заявку"})
		return
	}
	h.recordEvent(c, outcomeOf(out), out, nil)

	if !out.Accepted() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "rejected", "errors": out.Errors})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "accepted", "reference": out.Reference.String()})
}

func (h *Pages) recordEvent(c *gin.Context, outcome models.SubmissionOutcome, out intake.Outcome, cause error) {
	if h.events == nil {
		return
	}

	ev := &models.SubmissionEvent{
		Outcome:  outcome,
		Fields:   strings.Join(out.Errors.Fields(), ","),
		ClientIP: c.ClientIP(),
	}
	if out.Accepted() {
		ev.Reference = out.Reference.String()
	}
	if cause != nil {
		ev.Details = cause.Error()
	}

	if err := h.events.LogEvent(c.Request.Context(), ev); err != nil {
		h.log.WithError(err).Warn("failed to log submission event")
	}
}

func outcomeOf(out intake.Outcome) models.SubmissionOutcome {
	if out.Accepted() {
		return models.OutcomeAccepted
	}
	return models.OutcomeRejected
}

func formData(values intake.Values, errs intake.Errors) gin.H {
	if values == nil {
		values = intake.Values{}
	}
	if errs == nil {
		errs = intake.Errors{}
	}
	return gin.H{
		"form":            values,
		"errors":          errs,
		"specializations": models.Specializations,
		"experiences":     models.Experiences,
	}
}

// valuesFromJSON приводит JSON-поля к строкам формы: consent может прийти как bool.
func valuesFromJSON(raw map[string]interface{}) intake.Values {
	values := intake.Values{}
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			values[k] = t
		case bool:
			values[k] = strconv.FormatBool(t)
		case float64:
			values[k] = strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return values
}

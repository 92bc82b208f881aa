package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CSRFField      = "csrf_token"
	CSRFHeader     = "X-CSRF-Token"
	csrfSessionKey = "csrf_token"
)

// CSRFToken возвращает токен сессии, создавая его при первом обращении.
func CSRFToken(c *gin.Context) string {
	sess := sessions.Default(c)
	if token, ok := sess.Get(csrfSessionKey).(string); ok && token != "" {
		return token
	}

	token := uuid.NewString()
	sess.Set(csrfSessionKey, token)
	_ = sess.Save()
	return token
}

// CSRF сверяет токен из формы (или заголовка) с токеном сессии для изменяющих запросов.
func CSRF(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		expected, _ := sessions.Default(c).Get(csrfSessionKey).(string)
		got := c.PostForm(CSRFField)
		if got == "" {
			got = c.GetHeader(CSRFHeader)
		}

		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
			c.String(http.StatusBadRequest, "Сессия устарела. Обновите страницу и отправьте форму ещё раз.")
			c.Abort()
			return
		}

		c.Next()
	}
}

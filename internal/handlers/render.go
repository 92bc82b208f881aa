package handlers

import (
	"nok-landing/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	flashSuccess = "success"
	flashError   = "error"
)

type flash struct {
	Category string
	Message  string
}

// render: обёртка над c.HTML: прокидывает во все шаблоны пользователя, flash-сообщения и CSRF-токен.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if u := middleware.CurrentUser(c); u != nil {
		data["CurrentUser"] = u
		data["CurrentUsername"] = u.Username
		data["CurrentUserRole"] = u.Role
	}

	data["csrfToken"] = middleware.CSRFToken(c)
	data["flashes"] = popFlashes(c)

	c.HTML(status, tmpl, data)
}

func addFlash(c *gin.Context, category, message string) {
	sess := sessions.Default(c)
	sess.AddFlash(message, category)
	_ = sess.Save()
}

func popFlashes(c *gin.Context) []flash {
	sess := sessions.Default(c)

	var out []flash
	for _, category := range []string{flashSuccess, flashError} {
		for _, v := range sess.Flashes(category) {
			if msg, ok := v.(string); ok {
				out = append(out, flash{Category: category, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		_ = sess.Save()
	}
	return out
}

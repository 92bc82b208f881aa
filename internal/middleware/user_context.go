package middleware

import (
	"context"

	"nok-landing/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CurrentUserKey = "CurrentUser"

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// InjectUser кладёт в контекст пользователя из сессии. Без базы ничего не делает.
func InjectUser(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if users == nil {
			c.Next()
			return
		}

		sess := sessions.Default(c)
		if uid, ok := sess.Get(SessionUserID).(uint); ok && uid > 0 {
			if user, err := users.FindByID(c.Request.Context(), uid); err == nil {
				c.Set(CurrentUserKey, user)
			}
		}

		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

package handlers

import (
	"context"
	"net/http"
	"strings"

	"nok-landing/internal/middleware"
	"nok-landing/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const msgBadCredentials = "Неверный логин или пароль"

type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type Auth struct {
	users UserStore
	log   *logrus.Entry
}

func NewAuth(users UserStore, log *logrus.Entry) *Auth {
	return &Auth{users: users, log: log}
}

func (h *Auth) ShowLogin(c *gin.Context) {
	render(c, http.StatusOK, "admin_login.html", gin.H{"error": ""})
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h *Auth) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "admin_login.html", gin.H{"error": "Некорректные данные"})
		return
	}
	form.Username = strings.TrimSpace(form.Username)

	user, err := h.users.FindByUsername(c.Request.Context(), form.Username)
	if err != nil {
		h.log.WithField("username", form.Username).Warn("admin login failed: unknown user")
		render(c, http.StatusBadRequest, "admin_login.html", gin.H{"error": msgBadCredentials})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		h.log.WithField("username", form.Username).Warn("admin login failed: wrong password")
		render(c, http.StatusBadRequest, "admin_login.html", gin.H{"error": msgBadCredentials})
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionUserID, user.ID)
	sess.Set(middleware.SessionRole, string(user.Role))
	_ = sess.Save()

	h.log.WithField("username", user.Username).Info("admin logged in")
	c.Redirect(http.StatusFound, "/admin/applications")
}

func (h *Auth) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Redirect(http.StatusFound, "/admin/login")
}

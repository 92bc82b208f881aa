package server

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"nok-landing/internal/config"
	"nok-landing/internal/handlers"
	"nok-landing/internal/middleware"
	"nok-landing/internal/models"
	"nok-landing/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
)

// EventLog: журнал отправок: пишут публичные страницы, читает админка.
type EventLog interface {
	handlers.EventLogger
	handlers.EventStore
}

type UserStore interface {
	handlers.UserStore
	middleware.UserFinder
}

// Deps: зависимости роутера. Всё, кроме Intake и Log, опционально:
// админка появляется только с базой, статус доставки только с очередью.
type Deps struct {
	Intake       handlers.Submitter
	Applications handlers.ApplicationStore
	Events       EventLog
	Users        UserStore
	Statuses     handlers.StatusReader
	RateStore    limiter.Store
	Log          *logrus.Entry
}

func (d Deps) adminEnabled() bool {
	return d.Applications != nil && d.Events != nil && d.Users != nil
}

func maskEmail(email string) string {
	runes := []rune(email)
	atIdx := -1
	for i, r := range runes {
		if r == '@' {
			atIdx = i
			break
		}
	}
	if atIdx <= 0 {
		return "***"
	}
	prefix := runes[:atIdx]
	domain := string(runes[atIdx:])
	if len(prefix) <= 2 {
		return string(prefix) + "***" + domain
	}
	return string(prefix[0:2]) + "***" + domain
}

func maskPhone(phone string) string {
	runes := []rune(phone)
	n := len(runes)
	if n <= 4 {
		return "***"
	}
	masked := make([]rune, n)
	for i := range runes {
		if i >= n-2 {
			masked[i] = runes[i]
		} else {
			masked[i] = '*'
		}
	}
	return string(masked)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"eq":        func(a, b interface{}) bool { return a == b },
		"maskEmail": maskEmail,
		"maskPhone": maskPhone,
	}
}

func NewRouter(cfg *config.Config, deps Deps) (*gin.Engine, error) {
	r := gin.New()
	// без доверенных прокси ClientIP берётся из адреса соединения, а не из X-Forwarded-For
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("server: некорректный TRUSTED_PROXIES: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Log))

	r.StaticFS("/static", http.FS(web.Static()))

	tmpl, err := web.Templates(templateFuncs())
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("nok_session", store))

	var users middleware.UserFinder
	if deps.Users != nil {
		users = deps.Users
	}
	r.Use(middleware.InjectUser(users))

	var events handlers.EventLogger
	if deps.Events != nil {
		events = deps.Events
	}
	pages := handlers.NewPages(deps.Intake, events, cfg.BotUsername, deps.Log)
	limit := middleware.RateLimit(deps.RateStore, cfg.MaxRequestsPerMinute, time.Minute)

	// ЛЕНДИНГ
	html := r.Group("/")
	html.Use(middleware.CSRF(cfg.CSRFEnabled))
	html.GET("/", pages.Index)
	html.GET("/consultation", pages.Consultation)
	html.POST("/submit", limit, pages.Submit)

	// API
	api := r.Group("/api")
	api.POST("/applications", limit, pages.SubmitAPI)
	if deps.Statuses != nil {
		tracking := handlers.NewTracking(deps.Statuses, deps.Log)
		api.GET("/applications/:reference/status", tracking.ApplicationStatus)
	}

	// АДМИНКА
	if deps.adminEnabled() {
		auth := handlers.NewAuth(deps.Users, deps.Log)
		admin := handlers.NewAdmin(deps.Applications, deps.Events, deps.Log)

		html.GET("/admin/login", auth.ShowLogin)
		html.POST("/admin/login", limit, auth.Login)
		html.GET("/admin/logout", auth.Logout)

		protected := html.Group("/admin")
		protected.Use(middleware.RequireAuth())
		protected.GET("/applications", admin.ListApplications)
		protected.GET("/applications/:id", admin.ShowApplication)
		protected.GET("/events",
			middleware.RequireRole(models.RoleAdmin),
			admin.ListEvents,
		)
	}

	// МЕТРИКИ И HEALTHCHECK
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r, nil
}

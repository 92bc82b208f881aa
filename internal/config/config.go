package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSessionSecret = "nok-landing-development-secret-change-me"

type Config struct {
	Env        string
	ServerPort string
	Debug      bool
	LogLevel   string

	SessionSecret  string
	CSRFEnabled    bool
	// TrustedProxies: адреса прокси, чьему X-Forwarded-For верим; пусто: не верим никому.
	TrustedProxies []string

	DBDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TelegramToken  string
	TelegramChatID int64
	BotUsername    string

	CRMBaseURL string
	CRMToken   string

	SheetsCredentials   string
	SheetsSpreadsheetID string
	SheetsName          string

	MaxRequestsPerMinute int64
	APITimeout           time.Duration

	AdminUsername string
	AdminPassword string
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		ServerPort:          getEnv("SERVER_PORT", "5000"),
		LogLevel:            strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		SessionSecret:       os.Getenv("SECRET_KEY"),
		DBDSN:               os.Getenv("DB_DSN"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		TelegramToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		BotUsername:         os.Getenv("BOT_USERNAME"),
		CRMBaseURL:          os.Getenv("CRM_BASE_URL"),
		CRMToken:            os.Getenv("CRM_TOKEN"),
		SheetsCredentials:   os.Getenv("SHEETS_CREDENTIALS"),
		SheetsSpreadsheetID: os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetsName:          getEnv("SHEETS_NAME", "Заявки"),
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
		TrustedProxies:      parseList("TRUSTED_PROXIES"),
	}

	var err error
	if cfg.Debug, err = parseBool("DEBUG", "false"); err != nil {
		return nil, err
	}
	if cfg.CSRFEnabled, err = parseBool("CSRF_ENABLED", "true"); err != nil {
		return nil, err
	}
	if cfg.MaxRequestsPerMinute, err = parseInt("MAX_REQUESTS_PER_MINUTE", "30"); err != nil {
		return nil, err
	}
	timeout, err := parseInt("API_TIMEOUT", "30")
	if err != nil {
		return nil, err
	}
	cfg.APITimeout = time.Duration(timeout) * time.Second

	redisDB, err := parseInt("REDIS_DB", "0")
	if err != nil {
		return nil, err
	}
	cfg.RedisDB = int(redisDB)

	if cfg.TelegramChatID, err = parseInt("TELEGRAM_CHAT_ID", "0"); err != nil {
		return nil, err
	}

	if cfg.SessionSecret == "" && !cfg.IsProduction() {
		cfg.SessionSecret = devSessionSecret
		log.Printf("config: WARNING - SECRET_KEY не задан, используется значение для разработки")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) TelegramEnabled() bool { return c.TelegramToken != "" }
func (c *Config) CRMEnabled() bool      { return c.CRMBaseURL != "" }
func (c *Config) SheetsEnabled() bool   { return c.SheetsSpreadsheetID != "" }

// Validate проверяет согласованность настроек и сообщает обо всех проблемах сразу.
func (c *Config) Validate() error {
	var problems []string

	if c.SessionSecret == "" {
		problems = append(problems, "SECRET_KEY")
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		problems = append(problems, "TELEGRAM_CHAT_ID")
	}
	if c.CRMBaseURL != "" && c.CRMToken == "" {
		problems = append(problems, "CRM_TOKEN")
	}
	if c.SheetsSpreadsheetID != "" && c.SheetsCredentials == "" {
		problems = append(problems, "SHEETS_CREDENTIALS")
	}
	if c.MaxRequestsPerMinute <= 0 {
		problems = append(problems, "MAX_REQUESTS_PER_MINUTE")
	}
	if c.APITimeout <= 0 {
		problems = append(problems, "API_TIMEOUT")
	}

	if len(problems) > 0 {
		return errors.New("config: не заданы или некорректны переменные окружения: " + strings.Join(problems, ", "))
	}
	return nil
}

// String печатает настройки без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config(env=%s port=%s log_level=%s debug=%t secret_key=%s db=%s redis=%s telegram_token=%s crm=%s sheets=%s rate=%d/min api_timeout=%s)",
		c.Env, c.ServerPort, c.LogLevel, c.Debug,
		mask(c.SessionSecret), mask(c.DBDSN), orNotSet(c.RedisAddr), mask(c.TelegramToken),
		orNotSet(c.CRMBaseURL), orNotSet(c.SheetsSpreadsheetID),
		c.MaxRequestsPerMinute, c.APITimeout,
	)
}

func mask(v string) string {
	if v == "" {
		return "NOT_SET"
	}
	return strings.Repeat("*", 10)
}

func orNotSet(v string) string {
	if v == "" {
		return "NOT_SET"
	}
	return v
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func parseList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseBool(key, fallback string) (bool, error) {
	switch strings.ToLower(getEnv(key, fallback)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("config: %s должен быть true/false", key)
	}
}

func parseInt(key, fallback string) (int64, error) {
	v := getEnv(key, fallback)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: не удалось распарсить %s=%q: %w", key, v, err)
	}
	return n, nil
}

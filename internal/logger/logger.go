package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Init настраивает глобальный логгер: уровень и JSON-формат для production.
func Init(level string) {
	Log = logrus.New()
	Log.SetOutput(os.Stdout)
	Log.SetLevel(ParseLevel(level))
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter переключает вывод на текстовый формат (для development).
func SetTextFormatter() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// ParseLevel не зависит от регистра, неизвестный уровень становится info.
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// For возвращает именованный логгер компонента.
func For(name string) *logrus.Entry {
	return Log.WithField("logger", name)
}

// Discard нужен тестам, которым не интересен вывод.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

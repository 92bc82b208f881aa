package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, logrus.ErrorLevel, ParseLevel("ERROR"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel(""))
}

func TestForAddsLoggerName(t *testing.T) {
	Init("debug")
	SetTextFormatter()

	var buf bytes.Buffer
	Log.SetOutput(&buf)

	For("intake").Info("hello")

	out := buf.String()
	assert.Contains(t, out, "logger=intake")
	assert.Contains(t, out, "msg=hello")
}

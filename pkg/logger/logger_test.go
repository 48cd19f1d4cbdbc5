package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Setenv("LOG_LEVEL", "debug")
	Init()
	var buf bytes.Buffer
	GetLogger().SetOutput(&buf)
	t.Cleanup(func() { log = nil })
	return &buf
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.input))
		})
	}
}

func TestHelpersWriteStructuredEntries(t *testing.T) {
	buf := captureOutput(t)

	WithFields(logrus.Fields{"port": "8080"}).Info("Server starting")
	assert.Contains(t, buf.String(), `"port":"8080"`)
	assert.Contains(t, buf.String(), `"msg":"Server starting"`)

	buf.Reset()
	WithError(errors.New("boom")).Error("Server shutdown failed")
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"level":"error"`)

	buf.Reset()
	Warnf("Marked %d interrupted runs as failed", 2)
	assert.Contains(t, buf.String(), `"msg":"Marked 2 interrupted runs as failed"`)
	assert.Contains(t, buf.String(), `"level":"warning"`)

	buf.Reset()
	Infof("Starting %d analysis workers", 3)
	Errorf("Failed to close database: %v", "closed")
	assert.Contains(t, buf.String(), "Starting 3 analysis workers")
	assert.Contains(t, buf.String(), "Failed to close database: closed")
}

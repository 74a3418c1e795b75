package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatLogLineRendersPairs(t *testing.T) {
	line := formatLogLine("[ERR]", "login", []any{"username", "pepe", "error", errors.New("boom")})
	assert.Equal(t, "[ERR] AUTH login username=pepe error=boom", line)
}

func TestFormatLogLineNoArgs(t *testing.T) {
	assert.Equal(t, "[INF] AUTH ready", formatLogLine("[INF]", "ready", nil))
}

func TestFormatLogLineDanglingValue(t *testing.T) {
	line := formatLogLine("[WRN]", "lock", []any{"attempts", 5, "orphan"})
	assert.Equal(t, "[WRN] AUTH lock attempts=5 orphan", line)
}

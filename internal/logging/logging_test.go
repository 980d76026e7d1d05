package logging

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, parseLevel("debug"))
	assert.Equal(t, log.WarnLevel, parseLevel("warn"))
	assert.Equal(t, log.ErrorLevel, parseLevel("error"))
	assert.Equal(t, log.InfoLevel, parseLevel("info"))
	assert.Equal(t, log.InfoLevel, parseLevel("nonsense"))
}

func TestNew_AppliesRequestedLevel(t *testing.T) {
	logger := New("debug")
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
}

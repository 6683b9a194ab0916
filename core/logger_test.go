package core

import (
	"errors"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

type stringer struct{}

func (stringer) String() string {
	return "Module"
}

func TestGenerateLogMessage(t *testing.T) {
	msg := generateLogMessage(stringer{}, "FaceID=", uint64(3), " Nonce=", uint32(7), " ok=", true, " ", errors.New("lost"), " ", 1.5)
	assert.Equal(t, "[Module] FaceID=3 Nonce=7 ok=true lost 1.5", msg)
}

func TestSetLogLevel(t *testing.T) {
	defer SetLogLevel("INFO")

	SetLogLevel("TRACE")
	assert.True(t, shouldPrintTraceLogs)
	assert.Equal(t, log.DebugLevel, logLevel)

	SetLogLevel("warn")
	assert.False(t, shouldPrintTraceLogs)
	assert.Equal(t, log.WarnLevel, logLevel)

	SetLogLevel("loud")
	assert.Equal(t, log.InfoLevel, logLevel)
}

func TestSetLogClock(t *testing.T) {
	defer SetLogClock(nil)

	now := time.Unix(100, 0)
	SetLogClock(func() time.Time { return now })
	now = now.Add(1500 * time.Millisecond)
	entry, ok := logger().(*log.Entry)
	if assert.True(t, ok) {
		assert.Equal(t, 1500*time.Millisecond, entry.Fields["sim_time"])
	}

	SetLogClock(nil)
	assert.Equal(t, log.Log, logger())
}

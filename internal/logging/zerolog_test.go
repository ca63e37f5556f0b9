package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestZerologLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf))

	log.Info(context.Background(), "saved", "job_id", "job-abc", "count", 2)

	out := buf.String()
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"message":"saved"`)
	assert.Contains(t, out, `"job_id":"job-abc"`)
	assert.Contains(t, out, `"count":2`)
}

func TestZerologLogger_ErrorValuesAreStrings(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf))

	log.Error(context.Background(), "write failed", "error", errors.New("disk full"))

	assert.Contains(t, buf.String(), `"error":"disk full"`)
}

func TestZerologLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf)).With("component", "auth")

	log.Warn(context.Background(), "login failed")

	assert.Contains(t, buf.String(), `"component":"auth"`)
}

func TestZerologConsole_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologConsole(&buf, "warn")

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPairs_OddArgs(t *testing.T) {
	fields := pairs([]any{"a", 1, "dangling"})
	assert.Equal(t, 1, fields["a"])
	assert.Equal(t, "dangling", fields["!BADKEY"])
}

func TestNop_DoesNotPanic(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Info(context.Background(), "x", "k", "v")
		log.With("a", "b").Error(context.Background(), "y")
	})
}

package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsSilent(t *testing.T) {
	assert.False(t, L().Enabled(context.Background(), slog.LevelError))
}

func TestSet(t *testing.T) {
	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, nil)))
	defer Set(nil)

	L().Info("cell done", "row", 1)
	assert.Contains(t, buf.String(), "cell done")
	assert.Contains(t, buf.String(), "row=1")

	Set(nil)
	assert.False(t, L().Enabled(context.Background(), slog.LevelError))
}

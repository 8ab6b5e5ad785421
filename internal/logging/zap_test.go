package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_WritesFieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapLogger(zap.New(core))
	ctx := context.Background()

	l.Debug(ctx, "dbg", "a", 1)
	l.With("session", "s1").Error(ctx, "boom", "kind", "network")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "dbg", entries[0].Message)
	assert.Equal(t, int64(1), entries[0].ContextMap()["a"])

	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "s1", entries[1].ContextMap()["session"])
	assert.Equal(t, "network", entries[1].ContextMap()["kind"])
}

func TestNew_ZapFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, FormatZap, "info")
	require.NoError(t, err)

	l.Debug(context.Background(), "skipped")
	l.Info(context.Background(), "kept", "user_id", "u1")

	out := buf.String()
	assert.NotContains(t, out, "skipped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"user_id":"u1"`)

	_, err = New(&buf, FormatZap, "loud")
	assert.Error(t, err)
}

func TestZapLogger_RedactsSecrets(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapLogger(zap.New(core))

	l.Info(context.Background(), "refreshed", "refresh_token", "r-123", "expires_in", 3600)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, redacted, entries[0].ContextMap()["refresh_token"])
	assert.Equal(t, int64(3600), entries[0].ContextMap()["expires_in"])
}

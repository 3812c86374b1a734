package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ln := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if ln == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(ln), &m), ln)
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		" WARN ":   zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"trace":    zerolog.TraceLevel,
		"":         zerolog.InfoLevel,
		"chatty":   zerolog.InfoLevel,
		"disabled": zerolog.Disabled,
	} {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_FieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Service: "devquest", Component: "replay", Writer: &buf})
	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0]["message"])
	assert.Equal(t, "devquest", got[0]["service"])
	assert.Equal(t, "replay", got[0]["component"])
}

func TestSet_ContextChildren(t *testing.T) {
	var buf bytes.Buffer
	restore := Set(New(Options{Level: "debug", Writer: &buf}))
	defer restore()

	ctx := WithEvent(WithRequest(context.Background(), "req-1", "u-7"), "ev-9")
	C(ctx).Info().Msg("scoped")
	C(WithRequest(context.Background(), "", "")).Info().Msg("bare")
	Named("intake").Debug().Msg("named")

	got := lines(t, &buf)
	require.Len(t, got, 3)
	assert.Equal(t, "req-1", got[0]["request_id"])
	assert.Equal(t, "u-7", got[0]["user_id"])
	assert.Equal(t, "ev-9", got[0]["event_id"])
	assert.NotContains(t, got[1], "request_id")
	assert.NotContains(t, got[1], "user_id")
	assert.Equal(t, "intake", got[2]["component"])
}

func TestSet_Restore(t *testing.T) {
	before := Get()
	restore := Set(zerolog.Nop())
	assert.NotSame(t, before, Get())
	restore()
	assert.Same(t, before, Get())
}

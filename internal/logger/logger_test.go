package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := Ctx(context.Background(), RequestID("req-1"))
	ctx = Ctx(ctx, FeedID("f1"))
	l.With("component", "test").InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "f1", rec["feed_id"])
	assert.Equal(t, "test", rec["component"])
}

func TestCtx_SiblingsDoNotShareAttrs(t *testing.T) {
	parent := Ctx(context.Background(), RequestID("req-1"))
	a := Ctx(parent, FeedID("a"))
	b := Ctx(parent, FeedID("b"))

	assert.Equal(t, []string{"request_id=req-1", "feed_id=a"}, attrStrings(a))
	assert.Equal(t, []string{"request_id=req-1", "feed_id=b"}, attrStrings(b))
}

func attrStrings(ctx context.Context) []string {
	attrs, _ := ctx.Value(attrKey).([]slog.Attr)

	var out []string
	for _, a := range attrs {
		out = append(out, a.String())
	}
	return out
}

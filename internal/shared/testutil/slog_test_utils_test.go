package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("stage started", slog.String("stage", "read"))
		logger.Error("stage failed", slog.Int("line", 4))

		assert.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsMessage("stage started"))
		assert.True(t, handler.ContainsAttr("stage", "read"))
		assert.True(t, handler.ContainsAttr("line", int64(4)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelDebug), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("keeps bound attributes", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		runLogger := logger.With("run_id", "abc")
		runLogger.With("stage", "write").Info("rows written", "rows", 18)
		logger.Info("unbound")

		record, ok := handler.FindRecord("rows written")
		require.True(t, ok)
		assert.Equal(t, "abc", record.Attrs["run_id"])
		assert.Equal(t, "write", record.Attrs["stage"])
		assert.Equal(t, int64(18), record.Attrs["rows"])

		unbound, ok := handler.FindRecord("unbound")
		require.True(t, ok)
		assert.NotContains(t, unbound.Attrs, "run_id")
	})

	t.Run("groups prefix keys", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.WithGroup("summary").Info("done", "rows", 3)

		assert.True(t, handler.ContainsAttr("summary.rows", int64(3)))
	})

	t.Run("clear functionality", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.With("k", "v").Info("message 2")
		require.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("important message", slog.String("component", "test"))
		logger.Warn("warning message", slog.Int("retry", 3))

		AssertLogContains(t, handler, slog.LevelInfo, "important")
		AssertLogAttr(t, handler, "component", "test")
		AssertNoErrors(t, handler)
	})
}

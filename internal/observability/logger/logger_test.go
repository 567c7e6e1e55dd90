package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/hookup/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(nil, Config{Level: "loud"})
	assert.Error(t, err)
}

func TestWithContextAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := obscontext.WithRequestID(context.Background(), "req-1")

	WithContext(ctx, zap.New(core)).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
}

func TestGinMiddlewareLogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observe(t, zapcore.DebugLevel)

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{
		ErrorClassifier: func(err error) (string, string) { return "not_found", "not_found" },
	}))
	r.GET("/api/smart-furniture-hookups/:id", func(c *gin.Context) {
		_ = c.Error(errors.New("missing"))
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/smart-furniture-hookups/abc", nil)
	req.Header.Set("X-Request-Id", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-Id"))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "/api/smart-furniture-hookups/:id", fields["route"])
	assert.Equal(t, "abc", fields["hookup_id"])
	assert.Equal(t, "not_found", fields["error_type"])
	assert.Equal(t, "req-42", fields["request_id"])
}

func TestGinMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observe(t, zapcore.DebugLevel)

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, w.Header().Get("X-Request-Id"), 36)
}

func TestGormLoggerTrace(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)
	conflict := errors.New("UNIQUE constraint failed: smart_furniture_hookups.name")
	l := NewGormLogger(GormLoggerConfig{
		Level:    gormlogger.Warn,
		Expected: func(err error) bool { return errors.Is(err, conflict) },
	})

	insert := func() (string, int64) {
		return "INSERT INTO `smart_furniture_hookups` (`id`,`name`) VALUES (?,?)", 0
	}
	l.Trace(context.Background(), time.Now(), insert, conflict)
	l.Trace(context.Background(), time.Now(), insert, errors.New("disk full"))
	l.Trace(context.Background(), time.Now(), insert, nil)

	entries := logs.FilterMessage("store.query").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "INSERT", entries[0].ContextMap()["statement"])
	assert.Equal(t, "smart_furniture_hookups", entries[0].ContextMap()["table"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)

	silent := l.LogMode(gormlogger.Silent)
	silent.Error(context.Background(), "ignored")
	assert.Len(t, logs.FilterMessage("ignored").All(), 0)
}

func TestGormLoggerSkipsRecordNotFoundBelowInfo(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)
	selectByID := func() (string, int64) {
		return "SELECT * FROM smart_furniture_hookups WHERE id = ? LIMIT 1", 0
	}

	NewGormLogger(DefaultGormLoggerConfig()).Trace(context.Background(), time.Now(), selectByID, gormlogger.ErrRecordNotFound)
	assert.Zero(t, logs.FilterMessage("store.query").Len())

	NewGormLogger(GormLoggerConfig{Level: gormlogger.Info}).Trace(context.Background(), time.Now(), selectByID, gormlogger.ErrRecordNotFound)
	entries := logs.FilterMessage("store.query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "SELECT", entries[0].ContextMap()["statement"])
}

func TestDescribeSQL(t *testing.T) {
	tests := []struct {
		sql   string
		verb  string
		table string
	}{
		{`UPDATE "smart_furniture_hookups" SET "name"=$1 WHERE id = $2`, "UPDATE", "smart_furniture_hookups"},
		{"DELETE FROM `smart_furniture_hookups` WHERE `id` = ?", "DELETE", "smart_furniture_hookups"},
		{"SELECT 1", "SELECT", ""},
		{"", "UNKNOWN", ""},
	}
	for _, tt := range tests {
		stmt := describeSQL(tt.sql)
		assert.Equal(t, tt.verb, stmt.verb, tt.sql)
		assert.Equal(t, tt.table, stmt.table, tt.sql)
	}
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseGormLevel("silent"))
	assert.Equal(t, gormlogger.Error, ParseGormLevel(" ERROR "))
	assert.Equal(t, gormlogger.Info, ParseGormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, ParseGormLevel("chatty"))
}

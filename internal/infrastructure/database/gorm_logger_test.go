package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLoggerLogsFailedQuery(t *testing.T) {
	var buf strings.Builder
	l := newGormLogger(zerolog.New(&buf), time.Second)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM conversations", 0
	}, errors.New("connection reset"))

	out := buf.String()
	if !strings.Contains(out, "query failed") {
		t.Errorf("expected failed query log, got %q", out)
	}
	if !strings.Contains(out, "SELECT * FROM conversations") {
		t.Errorf("log must carry the statement, got %q", out)
	}
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	var buf strings.Builder
	l := newGormLogger(zerolog.New(&buf), time.Second)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM listings WHERE id = 1", 0
	}, gormlogger.ErrRecordNotFound)

	if buf.String() != "" {
		t.Errorf("not-found reads must stay quiet, got %q", buf.String())
	}
}

func TestGormLoggerLogsSlowQuery(t *testing.T) {
	var buf strings.Builder
	l := newGormLogger(zerolog.New(&buf), 10*time.Millisecond)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT * FROM messages", 42
	}, nil)

	if !strings.Contains(buf.String(), "slow query") {
		t.Errorf("expected slow query log, got %q", buf.String())
	}
}

func TestGormLoggerQuietOnFastSuccess(t *testing.T) {
	var buf strings.Builder
	l := newGormLogger(zerolog.New(&buf), time.Second)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	if buf.String() != "" {
		t.Errorf("fast successful queries must not log, got %q", buf.String())
	}
}

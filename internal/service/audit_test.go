package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/service"
	"github.com/bcnelson/sentinelguard/internal/storage"
	"github.com/bcnelson/sentinelguard/internal/storage/memory"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLog_AppendAndListNewestFirst(t *testing.T) {
	ctx := context.Background()
	audit := service.NewAuditLog(memory.New(), service.AuditOptions{Logger: zerolog.Nop()})

	first, err := audit.Append(ctx, domain.LevelInfo, "first", "")
	require.NoError(t, err)
	second, err := audit.Append(ctx, domain.LevelBlock, "Device blocked: X", "X")
	require.NoError(t, err)

	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	ts, err := time.Parse(time.RFC3339, first.Timestamp)
	require.NoError(t, err)
	assert.Zero(t, ts.Nanosecond())

	events, err := audit.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, second.ID, events[0].ID)
	assert.Equal(t, first.ID, events[1].ID)
	assert.Equal(t, "X", events[0].DeviceID)
}

func TestAuditLog_CapEvictsOldestFirst(t *testing.T) {
	ctx := context.Background()
	audit := service.NewAuditLog(memory.New(), service.AuditOptions{MaxEvents: 5, Logger: zerolog.Nop()})

	for i := 0; i < 8; i++ {
		_, err := audit.Append(ctx, domain.LevelInfo, fmt.Sprintf("event %d", i), "")
		require.NoError(t, err)
	}

	events, err := audit.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 5)

	var got []string
	for _, e := range events {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"event 7", "event 6", "event 5", "event 4", "event 3"}, got)
}

func TestAuditLog_DefaultCap(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	seed := domain.LogsDocument{}
	for i := 0; i < domain.DefaultMaxAuditEvents; i++ {
		seed.Events = append(seed.Events, domain.AuditEvent{ID: fmt.Sprint(i), Level: domain.LevelInfo, Message: fmt.Sprint(i)})
	}
	require.NoError(t, storage.Write(ctx, store, storage.LogsDocument, seed))

	audit := service.NewAuditLog(store, service.AuditOptions{Logger: zerolog.Nop()})
	added, err := audit.Append(ctx, domain.LevelWarn, "overflow", "")
	require.NoError(t, err)

	events, err := audit.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, domain.DefaultMaxAuditEvents)
	assert.Equal(t, added.ID, events[0].ID)
	assert.Equal(t, "1", events[len(events)-1].ID, "event 0 must be evicted")
}

func TestAuditLog_Stats(t *testing.T) {
	ctx := context.Background()
	audit := service.NewAuditLog(memory.New(), service.AuditOptions{Logger: zerolog.Nop()})

	for _, lvl := range []domain.Level{domain.LevelInfo, domain.LevelInfo, domain.LevelWarn, domain.LevelError, "CUSTOM"} {
		_, err := audit.Append(ctx, lvl, "x", "")
		require.NoError(t, err)
	}
	before, err := audit.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.LogStats{Total: 5, Info: 2, Warn: 1, Error: 1}, before)

	_, err = audit.Append(ctx, domain.LevelBlock, "Device blocked: X", "X")
	require.NoError(t, err)

	after, err := audit.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Block)
	assert.Equal(t, before.Total+1, after.Total)
}

func TestAuditLog_OpenLevelsAreCanonicalized(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	audit := service.NewAuditLog(store, service.AuditOptions{Logger: zerolog.Nop()})

	event, err := audit.Append(ctx, " info ", "lower case", "")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelInfo, event.Level)

	event, err = audit.Append(ctx, "notice", "custom", "")
	require.NoError(t, err)
	assert.Equal(t, domain.Level("NOTICE"), event.Level)

	// Documents written by other tools may hold non-canonical levels.
	require.NoError(t, storage.Write(ctx, store, storage.LogsDocument, domain.LogsDocument{Events: []domain.AuditEvent{
		{ID: "a", Level: "warn", Message: "legacy"},
		{ID: "b", Level: "Block", Message: "legacy"},
		{ID: "c", Level: "TRACE", Message: "legacy"},
	}}))
	stats, err := audit.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.LogStats{Total: 3, Warn: 1, Block: 1}, stats)
}

func TestAuditLog_Clear(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	audit := service.NewAuditLog(store, service.AuditOptions{Logger: zerolog.Nop()})

	_, err := audit.Append(ctx, domain.LevelInfo, "x", "")
	require.NoError(t, err)
	require.NoError(t, audit.Clear(ctx))

	events, err := audit.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	raw, ok := store.Raw(storage.LogsDocument)
	require.True(t, ok)
	assert.JSONEq(t, `{"events":[]}`, string(raw))
}

func TestAuditLog_Export(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	audit := service.NewAuditLog(memory.New(), service.AuditOptions{
		ExportDir: dir,
		Now:       fixedClock("2024-03-05T14:07:09Z"),
		Logger:    zerolog.Nop(),
	})

	_, err := audit.Append(ctx, domain.LevelInfo, "first", "")
	require.NoError(t, err)
	_, err = audit.Append(ctx, domain.LevelWarn, "second", "USB\\X")
	require.NoError(t, err)

	path, err := audit.Export(ctx)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "sentinelguard_logs_"))
	assert.Equal(t, ".json", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  ", "export must be pretty-printed")

	var exported []domain.AuditEvent
	require.NoError(t, json.Unmarshal(data, &exported))
	require.Len(t, exported, 2)
	assert.Equal(t, "first", exported[0].Message)

	second, err := audit.Export(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, path, second)
	assert.True(t, strings.HasSuffix(second, "_1.json"))
}

func TestAuditLog_ExportEmpty(t *testing.T) {
	audit := service.NewAuditLog(memory.New(), service.AuditOptions{ExportDir: t.TempDir(), Logger: zerolog.Nop()})

	path, err := audit.Export(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestAuditLog_StorageFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	audit := service.NewAuditLog(store, service.AuditOptions{Logger: zerolog.Nop()})

	store.FailSave = errors.New("disk full")
	_, err := audit.Append(ctx, domain.LevelInfo, "x", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Contains(t, err.Error(), "disk full")

	store.FailSave = nil
	store.FailLoad = errors.New("permission denied")
	_, err = audit.List(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)
	_, err = audit.Stats(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/metrics"
	"github.com/bcnelson/sentinelguard/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// exportTimeLayout formats the export file suffix (YYYYMMDD_HHMMSS).
const exportTimeLayout = "20060102_150405"

// AuditLog is the bounded, append-only record of security-relevant events.
type AuditLog struct {
	doc       *storage.Document[domain.LogsDocument]
	maxEvents int
	exportDir string
	now       func() time.Time
	logger    zerolog.Logger
}

// AuditOptions configures an AuditLog.
type AuditOptions struct {
	MaxEvents int    // zero means domain.DefaultMaxAuditEvents
	ExportDir string // directory for exported snapshots
	Now       func() time.Time
	Logger    zerolog.Logger
}

// NewAuditLog creates a new AuditLog backed by the logs document.
func NewAuditLog(store storage.Store, opts AuditOptions) *AuditLog {
	if opts.MaxEvents <= 0 {
		opts.MaxEvents = domain.DefaultMaxAuditEvents
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AuditLog{
		doc:       storage.NewDocument[domain.LogsDocument](store, storage.LogsDocument),
		maxEvents: opts.MaxEvents,
		exportDir: opts.ExportDir,
		now:       opts.Now,
		logger:    opts.Logger,
	}
}

// List returns all events, newest first.
func (a *AuditLog) List(ctx context.Context) ([]domain.AuditEvent, error) {
	doc, err := a.doc.Read(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]domain.AuditEvent, len(doc.Events))
	copy(events, doc.Events)
	slices.Reverse(events)
	return events, nil
}

// Append records a new event and evicts the oldest events beyond the cap.
func (a *AuditLog) Append(ctx context.Context, level domain.Level, message, deviceID string) (domain.AuditEvent, error) {
	level = level.Canonical()
	event := domain.AuditEvent{
		ID:        uuid.New().String(),
		Timestamp: a.now().Local().Truncate(time.Second).Format(time.RFC3339),
		Level:     level,
		Message:   message,
		DeviceID:  deviceID,
	}

	err := a.doc.Update(ctx, func(doc *domain.LogsDocument) (bool, error) {
		doc.Events = append(doc.Events, event)
		if over := len(doc.Events) - a.maxEvents; over > 0 {
			doc.Events = slices.Delete(doc.Events, 0, over)
		}
		return true, nil
	})
	if err != nil {
		return domain.AuditEvent{}, err
	}

	metrics.AuditEvents.WithLabelValues(levelLabel(level)).Inc()
	a.logger.Debug().
		Str("event_id", event.ID).
		Str("level", string(level)).
		Str("device_id", deviceID).
		Msg(message)

	return event, nil
}

// Clear removes every event.
func (a *AuditLog) Clear(ctx context.Context) error {
	return a.doc.Write(ctx, domain.LogsDocument{Events: []domain.AuditEvent{}})
}

// Stats counts events by level in a single pass.
func (a *AuditLog) Stats(ctx context.Context) (domain.LogStats, error) {
	doc, err := a.doc.Read(ctx)
	if err != nil {
		return domain.LogStats{}, err
	}
	return countLevels(doc.Events), nil
}

// levelLabel keeps the metric's level label to a fixed set.
func levelLabel(level domain.Level) string {
	switch level {
	case domain.LevelInfo, domain.LevelWarn, domain.LevelBlock, domain.LevelError:
		return string(level)
	default:
		return "OTHER"
	}
}

func countLevels(events []domain.AuditEvent) domain.LogStats {
	stats := domain.LogStats{Total: len(events)}
	for _, e := range events {
		switch e.Level.Canonical() {
		case domain.LevelInfo:
			stats.Info++
		case domain.LevelWarn:
			stats.Warn++
		case domain.LevelBlock:
			stats.Block++
		case domain.LevelError:
			stats.Error++
		}
	}
	return stats
}

// Export writes a pretty-printed snapshot of the events (oldest first) to a
// new timestamped file in the export directory and returns its absolute path.
func (a *AuditLog) Export(ctx context.Context) (string, error) {
	doc, err := a.doc.Read(ctx)
	if err != nil {
		return "", err
	}

	events := doc.Events
	if events == nil {
		events = []domain.AuditEvent{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encoding export: %v", domain.ErrStorage, err)
	}

	dir, err := filepath.Abs(a.exportDir)
	if err != nil {
		return "", fmt.Errorf("%w: resolving export directory: %v", domain.ErrStorage, err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("%w: creating export directory: %v", domain.ErrStorage, err)
	}

	base := "sentinelguard_logs_" + a.now().Local().Format(exportTimeLayout)
	path, err := writeExclusive(dir, base, data)
	if err != nil {
		return "", fmt.Errorf("%w: writing export: %v", domain.ErrStorage, err)
	}

	a.logger.Info().Str("path", path).Int("events", len(events)).Msg("audit log exported")
	return path, nil
}

// writeExclusive creates base.json, or base_N.json if that name is taken.
func writeExclusive(dir, base string, data []byte) (string, error) {
	for i := 0; i < 100; i++ {
		name := base + ".json"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.json", base, i)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", err
		}
		if err := f.Close(); err != nil {
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s", base)
}

// record appends an event as the secondary effect of a completed operation.
// A failure is logged, counted and added to out.Warnings instead of failing
// the operation.
func (a *AuditLog) record(ctx context.Context, out *domain.Outcome, level domain.Level, message, deviceID string) {
	event, err := a.Append(ctx, level, message, deviceID)
	if err != nil {
		metrics.AuditWriteFailures.Inc()
		a.logger.Warn().Err(err).Str("level", string(level)).Msg("audit write failed after successful operation")
		out.Warnings = append(out.Warnings, fmt.Sprintf("audit log not updated: %v", err))
		return
	}
	out.Event = &event
}

package service

import (
	"context"
	"slices"
	"time"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/metrics"
	"github.com/bcnelson/sentinelguard/internal/storage"
	"github.com/rs/zerolog"
)

// WhitelistService owns the set of device identities the operator trusts.
type WhitelistService struct {
	doc    *storage.Document[domain.WhitelistDocument]
	audit  *AuditLog
	now    func() time.Time
	logger zerolog.Logger
}

// NewWhitelistService creates a new WhitelistService backed by the whitelist document.
func NewWhitelistService(store storage.Store, audit *AuditLog, logger zerolog.Logger) *WhitelistService {
	return &WhitelistService{
		doc:    storage.NewDocument[domain.WhitelistDocument](store, storage.WhitelistDocument),
		audit:  audit,
		now:    time.Now,
		logger: logger,
	}
}

// List returns all entries in authorization order.
func (s *WhitelistService) List(ctx context.Context) ([]domain.WhitelistEntry, error) {
	doc, err := s.doc.Read(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Entries == nil {
		return []domain.WhitelistEntry{}, nil
	}
	return doc.Entries, nil
}

// Snapshot returns the entries keyed by instance ID.
func (s *WhitelistService) Snapshot(ctx context.Context) (map[string]domain.WhitelistEntry, error) {
	doc, err := s.doc.Read(ctx)
	if err != nil {
		return nil, err
	}

	snap := make(map[string]domain.WhitelistEntry, len(doc.Entries))
	for _, e := range doc.Entries {
		snap[e.InstanceID] = e
	}
	return snap, nil
}

// IsTrusted reports whether instanceID is whitelisted. A lookup failure
// counts as untrusted.
func (s *WhitelistService) IsTrusted(ctx context.Context, instanceID string) bool {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("instance_id", instanceID).Msg("whitelist lookup failed, treating device as untrusted")
		return false
	}
	_, ok := snap[instanceID]
	return ok
}

// Authorize adds device to the whitelist. Authorizing a device that is
// already present changes nothing and records no event.
func (s *WhitelistService) Authorize(ctx context.Context, device domain.Device) (domain.Outcome, error) {
	name := device.FriendlyName
	if name == "" {
		name = domain.DefaultFriendlyName
	}

	var out domain.Outcome
	err := s.doc.Update(ctx, func(doc *domain.WhitelistDocument) (bool, error) {
		if slices.ContainsFunc(doc.Entries, func(e domain.WhitelistEntry) bool {
			return e.InstanceID == device.InstanceID
		}) {
			return false, nil
		}

		doc.Entries = append(doc.Entries, domain.WhitelistEntry{
			InstanceID:   device.InstanceID,
			FriendlyName: name,
			AddedAt:      s.now().Local().Format(time.RFC3339),
		})
		out.Changed = true
		return true, nil
	})
	observe("authorize", out.Changed, err)
	if err != nil {
		return domain.Outcome{}, err
	}

	if out.Changed {
		s.audit.record(ctx, &out, domain.LevelInfo, "Device trusted: "+name, device.InstanceID)
	}
	return out, nil
}

// Revoke removes instanceID from the whitelist. Revoking an absent ID
// changes nothing and records no event.
func (s *WhitelistService) Revoke(ctx context.Context, instanceID string) (domain.Outcome, error) {
	var out domain.Outcome
	err := s.doc.Update(ctx, func(doc *domain.WhitelistDocument) (bool, error) {
		before := len(doc.Entries)
		doc.Entries = slices.DeleteFunc(doc.Entries, func(e domain.WhitelistEntry) bool {
			return e.InstanceID == instanceID
		})
		out.Changed = len(doc.Entries) != before
		return out.Changed, nil
	})
	observe("revoke", out.Changed, err)
	if err != nil {
		return domain.Outcome{}, err
	}

	if out.Changed {
		s.audit.record(ctx, &out, domain.LevelWarn, "Device removed from whitelist: "+instanceID, instanceID)
	}
	return out, nil
}

// Clear empties the whitelist and always records a WARN event.
func (s *WhitelistService) Clear(ctx context.Context) (domain.Outcome, error) {
	err := s.doc.Write(ctx, domain.WhitelistDocument{Entries: []domain.WhitelistEntry{}})
	observe("clear_whitelist", true, err)
	if err != nil {
		return domain.Outcome{}, err
	}

	out := domain.Outcome{Changed: true}
	s.audit.record(ctx, &out, domain.LevelWarn, "Whitelist cleared", "")
	return out, nil
}

// observe counts an enforcement action by result.
func observe(action string, changed bool, err error) {
	result := metrics.ObserveResult(err)
	if err == nil && !changed {
		result = metrics.ResultNoop
	}
	metrics.EnforcementActions.WithLabelValues(action, result).Inc()
}

package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"slices"
	"time"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// apiKeyPrefix marks keys issued by this console.
const apiKeyPrefix = "sg_"

// BootstrapKeyID identifies the bootstrap credential in request contexts.
const BootstrapKeyID = "bootstrap"

// APIKeyService manages console API keys stored in the apikeys document.
type APIKeyService struct {
	doc          *storage.Document[domain.APIKeysDocument]
	audit        *AuditLog
	bootstrapKey string
	now          func() time.Time
	logger       zerolog.Logger
}

// NewAPIKeyService creates a new APIKeyService. bootstrapKey, when set, is
// accepted only while no key exists.
func NewAPIKeyService(store storage.Store, audit *AuditLog, bootstrapKey string, logger zerolog.Logger) *APIKeyService {
	return &APIKeyService{
		doc:          storage.NewDocument[domain.APIKeysDocument](store, storage.APIKeysDocument),
		audit:        audit,
		bootstrapKey: bootstrapKey,
		now:          time.Now,
		logger:       logger,
	}
}

// Create issues a new key. The plaintext key is only returned here.
func (s *APIKeyService) Create(ctx context.Context, name string) (domain.CreateAPIKeyResponse, domain.Outcome, error) {
	key, hash, prefix, err := generateAPIKey()
	if err != nil {
		return domain.CreateAPIKeyResponse{}, domain.Outcome{}, fmt.Errorf("generating API key: %w", err)
	}

	apiKey := domain.APIKey{
		ID:        uuid.New().String(),
		Name:      name,
		KeyHash:   hash,
		KeyPrefix: prefix,
		CreatedAt: s.now().UTC(),
	}

	err = s.doc.Update(ctx, func(doc *domain.APIKeysDocument) (bool, error) {
		doc.Keys = append(doc.Keys, apiKey)
		return true, nil
	})
	observe("create_api_key", true, err)
	if err != nil {
		return domain.CreateAPIKeyResponse{}, domain.Outcome{}, err
	}

	out := domain.Outcome{Changed: true}
	s.audit.record(ctx, &out, domain.LevelInfo, fmt.Sprintf("API key created: %s (%s)", name, prefix), "")

	return domain.CreateAPIKeyResponse{
		ID:        apiKey.ID,
		Name:      apiKey.Name,
		Key:       key,
		KeyPrefix: apiKey.KeyPrefix,
		CreatedAt: apiKey.CreatedAt,
	}, out, nil
}

// List returns all keys without their hashes.
func (s *APIKeyService) List(ctx context.Context) ([]domain.APIKeyView, error) {
	doc, err := s.doc.Read(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.APIKeyView, 0, len(doc.Keys))
	for i := range doc.Keys {
		views = append(views, doc.Keys[i].View())
	}
	return views, nil
}

// Delete removes a key by ID.
func (s *APIKeyService) Delete(ctx context.Context, id string) (domain.Outcome, error) {
	var removed domain.APIKey
	err := s.doc.Update(ctx, func(doc *domain.APIKeysDocument) (bool, error) {
		idx := slices.IndexFunc(doc.Keys, func(k domain.APIKey) bool { return k.ID == id })
		if idx < 0 {
			return false, domain.ErrNotFound
		}
		removed = doc.Keys[idx]
		doc.Keys = slices.Delete(doc.Keys, idx, idx+1)
		return true, nil
	})
	observe("delete_api_key", true, err)
	if err != nil {
		return domain.Outcome{}, err
	}

	out := domain.Outcome{Changed: true}
	s.audit.record(ctx, &out, domain.LevelWarn, fmt.Sprintf("API key deleted: %s (%s)", removed.Name, removed.KeyPrefix), "")
	return out, nil
}

// Authenticate resolves a presented key. The bootstrap key is valid only
// while no key has been created.
func (s *APIKeyService) Authenticate(ctx context.Context, presented string) (*domain.APIKey, error) {
	if presented == "" {
		return nil, domain.ErrInvalidAPIKey
	}

	doc, err := s.doc.Read(ctx)
	if err != nil {
		return nil, err
	}

	if len(doc.Keys) == 0 {
		if s.bootstrapKey == "" {
			return nil, domain.ErrNoAPIKeys
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(s.bootstrapKey)) == 1 {
			return &domain.APIKey{ID: BootstrapKeyID, Name: "Bootstrap Key"}, nil
		}
		return nil, domain.ErrInvalidAPIKey
	}

	hash := hashAPIKey(presented)
	for i := range doc.Keys {
		if subtle.ConstantTimeCompare([]byte(doc.Keys[i].KeyHash), []byte(hash)) == 1 {
			key := doc.Keys[i]
			s.touch(ctx, key.ID)
			return &key, nil
		}
	}

	if s.bootstrapKey != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(s.bootstrapKey)) == 1 {
		return nil, domain.ErrBootstrapDisabled
	}
	return nil, domain.ErrInvalidAPIKey
}

// touch updates LastUsedAt; failures are only logged.
func (s *APIKeyService) touch(ctx context.Context, id string) {
	now := s.now().UTC()
	err := s.doc.Update(ctx, func(doc *domain.APIKeysDocument) (bool, error) {
		for i := range doc.Keys {
			if doc.Keys[i].ID == id {
				doc.Keys[i].LastUsedAt = &now
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("key_id", id).Msg("updating API key last use failed")
	}
}

// generateAPIKey generates a new random API key.
func generateAPIKey() (key string, hash string, prefix string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", "", err
	}

	key = apiKeyPrefix + hex.EncodeToString(buf)
	hash = hashAPIKey(key)
	prefix = key[:len(apiKeyPrefix)+8]

	return key, hash, prefix, nil
}

// hashAPIKey creates a SHA-256 hash of the API key.
func hashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

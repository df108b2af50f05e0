package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/quotedesk-backend/pkg/config"
	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotedesk-backend/pkg/errors"
	"github.com/angelmondragon/quotedesk-backend/pkg/logger"
	"github.com/angelmondragon/quotedesk-backend/pkg/security"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const tokenBytes = 32

// ErrInvalidSession is the cause behind every rejected token.
var ErrInvalidSession = errors.New("invalid session token")

type cacheStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(digest string) string
}

// Metadata describes the client a session was issued to.
type Metadata struct {
	IPAddress string
	UserAgent string
}

// Principal is the authenticated caller resolved from a token.
type Principal struct {
	User      models.User
	SessionID uuid.UUID
	ExpiresAt time.Time
}

type cachedSession struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager issues, resolves and revokes opaque session tokens. Sessions live
// in the database; when a cache is configured, lookups are memoized under an
// HMAC of the token so raw tokens never reach Redis.
type Manager struct {
	db       *gorm.DB
	cache    cacheStore
	secret   []byte
	ttl      time.Duration
	cacheTTL time.Duration
	now      func() time.Time
	logg     *logger.Logger
}

// NewManager builds a session manager. cache may be nil.
func NewManager(db *gorm.DB, cache cacheStore, cfg config.SessionConfig, logg *logger.Logger) (*Manager, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if cache != nil && len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("session secret is required when caching")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Manager{
		db:       db,
		cache:    cache,
		secret:   []byte(cfg.Secret),
		ttl:      cfg.TTL,
		cacheTTL: cfg.CacheTTL,
		now:      time.Now,
		logg:     logg,
	}, nil
}

// Create persists a new session for userID and returns it with its token.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID, meta Metadata) (*models.Session, error) {
	token, err := security.NewToken(tokenBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate session token")
	}
	sess := &models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: m.now().Add(m.ttl).UTC(),
		IPAddress: optional(meta.IPAddress),
		UserAgent: optional(meta.UserAgent),
	}
	if err := m.db.WithContext(ctx).Omit("User").Create(sess).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}
	return sess, nil
}

// Lookup resolves token to its user. Missing, unknown and expired tokens are
// rejected with UNAUTHORIZED.
func (m *Manager) Lookup(ctx context.Context, token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, unauthorized()
	}

	entry, ok := m.cached(ctx, token)
	if !ok {
		var sess models.Session
		err := m.db.WithContext(ctx).Where("token = ?", token).First(&sess).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorized()
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
		}
		entry = cachedSession{SessionID: sess.ID, UserID: sess.UserID, ExpiresAt: sess.ExpiresAt}
	}

	now := m.now()
	if (models.Session{ExpiresAt: entry.ExpiresAt}).Expired(now) {
		m.forget(ctx, token)
		if err := m.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", entry.SessionID).Error; err != nil {
			m.logg.Warn(ctx, "failed to purge expired session: "+err.Error())
		}
		return nil, unauthorized()
	}

	var user models.User
	err := m.db.WithContext(ctx).First(&user, "id = ?", entry.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m.forget(ctx, token)
		return nil, unauthorized()
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session user")
	}

	if !ok {
		m.remember(ctx, token, entry, now)
	}
	return &Principal{User: user, SessionID: entry.SessionID, ExpiresAt: entry.ExpiresAt}, nil
}

// Revoke deletes the session behind token. Revoking an unknown token is a
// no-op.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return unauthorized()
	}
	m.forget(ctx, token)
	if err := m.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session")
	}
	return nil
}

// PurgeExpired removes sessions that expired before cutoff. Cached entries
// are left to their own TTL, which never outlives the session.
func (m *Manager) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := m.db.WithContext(ctx).Where("expires_at <= ?", cutoff.UTC()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "purge expired sessions")
	}
	return res.RowsAffected, nil
}

func (m *Manager) cacheKey(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return m.cache.SessionKey(hex.EncodeToString(mac.Sum(nil)))
}

// cached never fails the request: cache errors fall back to the database.
func (m *Manager) cached(ctx context.Context, token string) (cachedSession, bool) {
	if m.cache == nil {
		return cachedSession{}, false
	}
	raw, err := m.cache.Get(ctx, m.cacheKey(token))
	if err != nil {
		if !errors.Is(err, redislib.Nil) {
			m.logg.Warn(ctx, "session cache read failed: "+err.Error())
		}
		return cachedSession{}, false
	}
	var entry cachedSession
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return cachedSession{}, false
	}
	return entry, true
}

func (m *Manager) remember(ctx context.Context, token string, entry cachedSession, now time.Time) {
	if m.cache == nil {
		return
	}
	ttl := entry.ExpiresAt.Sub(now)
	if m.cacheTTL > 0 && m.cacheTTL < ttl {
		ttl = m.cacheTTL
	}
	if ttl <= 0 {
		return
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := m.cache.Set(ctx, m.cacheKey(token), string(payload), ttl); err != nil {
		m.logg.Warn(ctx, "session cache write failed: "+err.Error())
	}
}

func (m *Manager) forget(ctx context.Context, token string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Del(ctx, m.cacheKey(token)); err != nil {
		m.logg.Warn(ctx, "session cache evict failed: "+err.Error())
	}
}

func unauthorized() error {
	return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, ErrInvalidSession, "invalid or expired session")
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

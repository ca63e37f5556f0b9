// Package services contains the application services of the jobkeeper
// client: the identity store (AuthService) and the user-scoped job ledger.
// This file defines the identity store: registration, login against the
// local user directory, logout and restoring the persisted session.
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
	"github.com/dmitrijs2005/jobkeeper/internal/common"
	"github.com/dmitrijs2005/jobkeeper/internal/cryptox"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// sessionKeySize is the length of the HS256 key that signs session tokens.
const sessionKeySize = 32

// AuthService tracks the single active identity of the client.
//
// Contract:
//   - Register: create a directory entry and start a session for it.
//     Fails with common.ErrAlreadyRegistered if the email (case-insensitive)
//     is taken.
//   - Login: start a session for an existing entry. Fails with
//     common.ErrInvalidCredentials without touching any state.
//   - Logout: end the session in memory, then in storage. Never touches
//     the directory or ledger data.
//   - CurrentIdentity: the in-memory session, nil when logged out.
//   - Restore: hydrate the session from storage, once at startup.
//   - OnIdentityChange: register an observer called after every change.
//
// Storage failures are wrapped with common.ErrPersistenceRead or
// common.ErrPersistenceWrite, logged, and returned as ordinary errors.
type AuthService interface {
	Register(ctx context.Context, name, email string, password []byte) (*models.Identity, error)
	Login(ctx context.Context, email string, password []byte) (*models.Identity, error)
	Logout(ctx context.Context) error
	CurrentIdentity() *models.Identity
	Restore(ctx context.Context) error
	OnIdentityChange(fn func(*models.Identity))
}

// sessionClaims is the payload of the persisted session token.
type sessionClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authService struct {
	store   store.Store
	logger  logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu         sync.Mutex
	current    *models.Identity
	signingKey []byte

	obsMu     sync.Mutex
	observers []func(*models.Identity)
}

// NewAuthService returns an AuthService persisting into s.
func NewAuthService(s store.Store, logger logging.Logger, m *metrics.Metrics) AuthService {
	return &authService{
		store:   s,
		logger:  logger.With("component", "auth"),
		metrics: m,
		now:     time.Now,
	}
}

func (a *authService) OnIdentityChange(fn func(*models.Identity)) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	a.observers = append(a.observers, fn)
}

func (a *authService) notify(id *models.Identity) {
	a.obsMu.Lock()
	observers := append([]func(*models.Identity){}, a.observers...)
	a.obsMu.Unlock()

	for _, fn := range observers {
		fn(copyIdentity(id))
	}
}

func (a *authService) CurrentIdentity() *models.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyIdentity(a.current)
}

// Register creates a new directory entry with a salted argon2id verifier
// and persists the directory together with the new session in one write.
func (a *authService) Register(ctx context.Context, name, email string, password []byte) (*models.Identity, error) {
	email = common.NormalizeEmail(email)
	name = strings.TrimSpace(name)

	a.mu.Lock()
	users, err := a.loadDirectory(ctx)
	if err != nil {
		a.mu.Unlock()
		a.metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeError).Inc()
		return nil, err
	}

	if _, ok := findByEmail(users, email); ok {
		a.mu.Unlock()
		a.metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeRejected).Inc()
		return nil, common.ErrAlreadyRegistered
	}

	salt, verifier := cryptox.NewCredential(password)
	rec := models.UserRecord{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Salt:      salt,
		Verifier:  verifier,
		CreatedAt: a.now().UTC(),
	}
	users = append(users, rec)
	identity := rec.Identity()

	if err := a.persistSession(ctx, identity, users); err != nil {
		a.mu.Unlock()
		a.metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeError).Inc()
		return nil, err
	}
	a.current = &identity
	a.mu.Unlock()

	a.metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeOK).Inc()
	a.logger.Info(ctx, "user registered", "user_id", identity.ID)
	a.notify(&identity)
	return copyIdentity(&identity), nil
}

// Login checks password against the directory entry for email. Entries
// written with a plaintext secret are accepted once and upgraded to a
// salted verifier in the same write that stores the session.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.Identity, error) {
	email = common.NormalizeEmail(email)

	a.mu.Lock()
	users, err := a.loadDirectory(ctx)
	if err != nil {
		a.mu.Unlock()
		a.metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeError).Inc()
		return nil, err
	}

	i, ok := findByEmail(users, email)
	if !ok || !checkPassword(users[i], password) {
		a.mu.Unlock()
		a.metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeRejected).Inc()
		return nil, common.ErrInvalidCredentials
	}

	var directory []models.UserRecord
	if users[i].IsLegacy() {
		upgraded := make([]models.UserRecord, len(users))
		copy(upgraded, users)
		upgraded[i].Salt, upgraded[i].Verifier = cryptox.NewCredential(password)
		upgraded[i].Password = ""
		directory = upgraded
	}

	identity := users[i].Identity()
	if err := a.persistSession(ctx, identity, directory); err != nil {
		a.mu.Unlock()
		a.metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeError).Inc()
		return nil, err
	}
	a.current = &identity
	a.mu.Unlock()

	if directory != nil {
		a.logger.Info(ctx, "upgraded plaintext credential", "user_id", identity.ID)
	}
	a.metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeOK).Inc()
	a.logger.Info(ctx, "user logged in", "user_id", identity.ID)
	a.notify(&identity)
	return copyIdentity(&identity), nil
}

// Logout clears the in-memory session before touching storage, so a failed
// delete still leaves the client logged out.
func (a *authService) Logout(ctx context.Context) error {
	a.mu.Lock()
	prev := a.current
	a.current = nil
	a.mu.Unlock()

	if prev != nil {
		a.notify(nil)
	}

	if err := a.store.Delete(ctx, store.KeySession); err != nil {
		a.logger.Error(ctx, "failed to clear persisted session", "error", err)
		return fmt.Errorf("%w: %w", common.ErrPersistenceWrite, err)
	}
	if prev != nil {
		a.logger.Info(ctx, "user logged out", "user_id", prev.ID)
	}
	return nil
}

// Restore reads the persisted session. Tokens that fail verification, and
// sessions whose user is no longer in the directory, are discarded. A
// session stored by older clients as a plain identity object is accepted
// and rewritten as a signed token.
func (a *authService) Restore(ctx context.Context) error {
	a.mu.Lock()

	raw, err := a.store.Get(ctx, store.KeySession)
	if err != nil {
		a.mu.Unlock()
		a.logger.Error(ctx, "failed to read session", "error", err)
		return fmt.Errorf("%w: %w", common.ErrPersistenceRead, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		a.mu.Unlock()
		return nil
	}

	var (
		userID string
		legacy = raw[0] == '{'
	)
	if legacy {
		var id models.Identity
		if err := json.Unmarshal(raw, &id); err == nil {
			userID = id.ID
		}
	} else {
		userID, err = a.verifyToken(ctx, string(raw))
		if errors.Is(err, common.ErrPersistenceRead) || errors.Is(err, common.ErrPersistenceWrite) {
			a.mu.Unlock()
			a.logger.Error(ctx, "session signing key unavailable, session kept", "error", err)
			return err
		}
		if err != nil {
			a.logger.Warn(ctx, "discarding invalid session token", "error", err)
		}
	}

	users, err := a.loadDirectory(ctx)
	if err != nil {
		a.mu.Unlock()
		return err
	}

	i := -1
	if userID != "" {
		i = findByID(users, userID)
	}
	if i < 0 {
		a.mu.Unlock()
		a.logger.Warn(ctx, "persisted session does not match a known user")
		if err := a.store.Delete(ctx, store.KeySession); err != nil {
			a.logger.Error(ctx, "failed to clear stale session", "error", err)
		}
		return nil
	}

	identity := users[i].Identity()
	if legacy {
		if err := a.persistSession(ctx, identity, nil); err != nil {
			a.logger.Warn(ctx, "legacy session kept as is", "error", err)
		}
	}
	a.current = &identity
	a.mu.Unlock()

	a.logger.Info(ctx, "session restored", "user_id", identity.ID)
	a.notify(&identity)
	return nil
}

// loadDirectory reads the user directory. A missing key is an empty
// directory. Callers hold a.mu.
func (a *authService) loadDirectory(ctx context.Context) ([]models.UserRecord, error) {
	raw, err := a.store.Get(ctx, store.KeyUsers)
	if err != nil {
		a.logger.Error(ctx, "failed to read user directory", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrPersistenceRead, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var users []models.UserRecord
	if err := json.Unmarshal(raw, &users); err != nil {
		a.logger.Error(ctx, "user directory is corrupt", "error", err)
		return nil, fmt.Errorf("%w: decode user directory: %w", common.ErrPersistenceRead, err)
	}
	return users, nil
}

// persistSession signs a token for identity and stores it; when directory
// is non-nil it is written in the same transaction. Callers hold a.mu.
func (a *authService) persistSession(ctx context.Context, identity models.Identity, directory []models.UserRecord) error {
	key, err := a.sessionKey(ctx)
	if err != nil {
		return err
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  identity.ID,
			IssuedAt: jwt.NewNumericDate(a.now()),
		},
		Name:  identity.Name,
		Email: identity.Email,
	}).SignedString(key)
	if err != nil {
		return fmt.Errorf("%w: sign session: %w", common.ErrPersistenceWrite, err)
	}

	values := map[string][]byte{store.KeySession: []byte(token)}
	if directory != nil {
		data, err := json.Marshal(directory)
		if err != nil {
			return fmt.Errorf("%w: encode user directory: %w", common.ErrPersistenceWrite, err)
		}
		values[store.KeyUsers] = data
	}

	if err := a.store.SetMany(ctx, values); err != nil {
		a.logger.Error(ctx, "failed to persist session", "error", err)
		return fmt.Errorf("%w: %w", common.ErrPersistenceWrite, err)
	}
	return nil
}

// sessionKey returns the token signing key, creating and persisting one on
// first use. Callers hold a.mu.
func (a *authService) sessionKey(ctx context.Context) ([]byte, error) {
	if a.signingKey != nil {
		return a.signingKey, nil
	}

	key, err := a.store.Get(ctx, store.KeySessionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPersistenceRead, err)
	}
	if len(key) < sessionKeySize {
		key = common.GenerateRandByteArray(sessionKeySize)
		if err := a.store.Set(ctx, store.KeySessionKey, key); err != nil {
			a.logger.Error(ctx, "failed to persist session key", "error", err)
			return nil, fmt.Errorf("%w: %w", common.ErrPersistenceWrite, err)
		}
	}
	a.signingKey = key
	return key, nil
}

func (a *authService) verifyToken(ctx context.Context, token string) (string, error) {
	key, err := a.sessionKey(ctx)
	if err != nil {
		return "", err
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errors.New("session token carries no subject")
	}
	return claims.Subject, nil
}

func checkPassword(rec models.UserRecord, password []byte) bool {
	if rec.IsLegacy() {
		return cryptox.CheckPlaintext(password, rec.Password)
	}
	return cryptox.CheckCredential(password, rec.Salt, rec.Verifier)
}

func findByEmail(users []models.UserRecord, email string) (int, bool) {
	for i, u := range users {
		if common.NormalizeEmail(u.Email) == email {
			return i, true
		}
	}
	return -1, false
}

func findByID(users []models.UserRecord, id string) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func copyIdentity(id *models.Identity) *models.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

// Package auth owns the cached Identity: the single source of truth for
// whether the session is authenticated. Identity only ever changes through
// the explicit login/register/logout/refresh/update operations here, and
// every change is published to subscribers as a typed event instead of an
// ambient broadcast.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/askgita/askgita/internal/client/api"
	"github.com/askgita/askgita/internal/client/models"
	"github.com/askgita/askgita/internal/client/quota"
	"github.com/askgita/askgita/internal/client/session"
	"github.com/askgita/askgita/internal/client/store"
	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Key is the cache key holding the serialized identity.
const Key = "user"

// Gate tracks the authenticated identity and coordinates the state that is
// coupled to it by policy: logout wipes the cached conversation and the
// guest quota along with the identity, so nothing leaks across accounts
// through the shared device cache.
type Gate struct {
	api     api.Client
	kv      store.Store
	session *session.Store
	quota   *quota.Limiter
	log     logging.Logger

	mu       sync.RWMutex
	identity *models.Identity // nil = guest

	subMu sync.Mutex
	subs  map[int]chan Event
	nextS int
}

func NewGate(apiClient api.Client, kv store.Store, sess *session.Store, q *quota.Limiter, log logging.Logger) *Gate {
	return &Gate{
		api:     apiClient,
		kv:      kv,
		session: sess,
		quota:   q,
		log:     log,
		subs:    make(map[int]chan Event),
	}
}

// Load restores the cached identity, repairing a structurally invalid token
// from the cached user id. Call once at startup before anything consults
// Current.
func (g *Gate) Load(ctx context.Context) {
	raw, err := g.kv.Get(ctx, Key)
	if err != nil || len(raw) == 0 {
		return
	}

	var id models.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		g.log.Warn(ctx, "discarding unreadable cached identity", "err", err)
		_ = g.kv.Delete(ctx, Key)
		return
	}
	if id.UserID == "" {
		return
	}

	if repairToken(&id) {
		g.log.Warn(ctx, "repaired malformed cached token", "user", id.UserID)
		if err := g.persist(ctx, &id); err != nil {
			g.log.Warn(ctx, "failed to persist repaired token", "err", err)
		}
	}

	g.mu.Lock()
	g.identity = &id
	g.mu.Unlock()
}

// repairToken validates the cached token structurally and, when it is not a
// parseable JWT or a well-formed legacy token, rebuilds it in the legacy
// deterministic form from the user id. Reports whether the token changed.
func repairToken(id *models.Identity) bool {
	if tokenStructurallyValid(id.Token, id.UserID) {
		return false
	}
	id.Token = common.LegacyTokenPrefix + id.UserID
	return true
}

func tokenStructurallyValid(token, userID string) bool {
	if token == "" {
		return false
	}
	if strings.HasPrefix(token, common.LegacyTokenPrefix) {
		return strings.TrimPrefix(token, common.LegacyTokenPrefix) == userID
	}
	if strings.Count(token, ".") != 2 {
		return false
	}
	_, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	return err == nil
}

// Current returns a copy of the cached identity, or nil for a guest.
func (g *Gate) Current() *models.Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.identity == nil {
		return nil
	}
	cp := *g.identity
	return &cp
}

// Authenticated reports whether an identity is cached.
func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.identity != nil
}

// Credentials supplies the bearer token and fallback user id for outbound
// requests. Satisfies api.CredentialFunc.
func (g *Gate) Credentials() (token, userID string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.identity == nil {
		return "", ""
	}
	return g.identity.Token, g.identity.UserID
}

// Login authenticates against the server. On success the new identity is
// persisted and the guest quota resets to zero; the live conversation is
// preserved. The server's rejection reason is surfaced unchanged; no retry.
func (g *Gate) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	id, err := g.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := g.adopt(ctx, id, EventLogin); err != nil {
		return nil, err
	}
	return id, nil
}

// Register creates an account (the email must have been verified with an
// OTP first) and adopts the returned identity exactly like Login.
func (g *Gate) Register(ctx context.Context, username, email, password, otp string) (*models.Identity, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", common.ErrValidation)
	}

	id, err := g.api.Register(ctx, username, email, password, otp)
	if err != nil {
		return nil, err
	}
	if err := g.adopt(ctx, id, EventLogin); err != nil {
		return nil, err
	}
	return id, nil
}

// adopt persists a freshly issued identity and resets the guest quota.
func (g *Gate) adopt(ctx context.Context, id *models.Identity, kind EventKind) error {
	if err := g.persist(ctx, id); err != nil {
		return err
	}
	if err := g.quota.Reset(ctx); err != nil {
		g.log.Warn(ctx, "failed to reset question count", "err", err)
	}

	g.mu.Lock()
	g.identity = id
	g.mu.Unlock()

	g.publish(Event{Kind: kind, Identity: id})
	return nil
}

// Logout clears the identity, the cached conversation, and the guest quota
// in a single transaction when the store supports one, so no intermediate
// state is observable. The remote logout call is best-effort.
func (g *Gate) Logout(ctx context.Context) error {
	if err := g.api.Logout(ctx); err != nil {
		g.log.Warn(ctx, "remote logout failed", "err", err)
	}

	wipe := func(ctx context.Context, kv store.Store) error {
		if err := kv.Delete(ctx, Key); err != nil {
			return err
		}
		if err := kv.Delete(ctx, session.Key); err != nil {
			return err
		}
		return quota.ResetIn(ctx, kv)
	}

	var err error
	if tx, ok := g.kv.(store.TxStore); ok {
		err = tx.WithTx(ctx, wipe)
	} else {
		err = wipe(ctx, g.kv)
	}
	if err != nil {
		return fmt.Errorf("failed to clear local state: %w", err)
	}

	g.mu.Lock()
	g.identity = nil
	g.mu.Unlock()

	g.publish(Event{Kind: EventLogout})
	return nil
}

// Refresh re-fetches the canonical profile and merges its display fields
// into the cached identity without discarding the session token. Failures
// are logged and swallowed: a transient network error must never force a
// logout, and the previously cached identity stays authoritative until a
// successful refresh replaces it.
func (g *Gate) Refresh(ctx context.Context) *models.Identity {
	cur := g.Current()
	if cur == nil {
		return nil
	}

	profile, err := g.api.Profile(ctx)
	if err != nil {
		g.log.Warn(ctx, "profile refresh failed, keeping cached identity", "err", err)
		return cur
	}

	merged := mergeProfile(cur, profile)
	if merged.UserID != cur.UserID {
		g.log.Warn(ctx, "profile user id differs from cached identity",
			"cached", cur.UserID, "fetched", merged.UserID)
	}

	if err := g.persist(ctx, merged); err != nil {
		g.log.Warn(ctx, "failed to persist refreshed identity", "err", err)
		return cur
	}

	g.mu.Lock()
	g.identity = merged
	g.mu.Unlock()

	g.publish(Event{Kind: EventRefresh, Identity: merged})
	return merged
}

// mergeProfile applies the freshly fetched display fields over the cached
// identity. The fresh profile wins for display fields; the cached token is
// preserved.
func mergeProfile(cached, fresh *models.Identity) *models.Identity {
	merged := *cached
	if fresh.UserID != "" {
		merged.UserID = fresh.UserID
	}
	merged.Username = fresh.Username
	merged.Email = fresh.Email
	merged.ProfileImage = fresh.ProfileImage
	merged.CreatedAt = fresh.CreatedAt
	return &merged
}

// UpdateProfile pushes profile changes to the server and adopts the updated
// identity it returns.
func (g *Gate) UpdateProfile(ctx context.Context, username, profileImage string) (*models.Identity, error) {
	cur := g.Current()
	if cur == nil {
		return nil, common.ErrUnauthorized
	}

	updated, err := g.api.UpdateProfile(ctx, username, profileImage)
	if err != nil {
		return nil, err
	}

	merged := mergeProfile(cur, updated)
	return merged, g.UpdateIdentity(ctx, merged)
}

// UpdateIdentity replaces the cached identity with id, persists it, and
// notifies subscribers. Used after profile updates.
func (g *Gate) UpdateIdentity(ctx context.Context, id *models.Identity) error {
	if err := g.persist(ctx, id); err != nil {
		return err
	}

	g.mu.Lock()
	g.identity = id
	g.mu.Unlock()

	g.publish(Event{Kind: EventUpdate, Identity: id})
	return nil
}

func (g *Gate) persist(ctx context.Context, id *models.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to serialize identity: %w", err)
	}
	return g.kv.Set(ctx, Key, raw)
}

// Subscribe registers an identity-change listener. The returned cancel
// function must be called to release the subscription. Events are dropped,
// not blocked on, when the subscriber lags.
func (g *Gate) Subscribe() (<-chan Event, func()) {
	g.subMu.Lock()
	defer g.subMu.Unlock()

	id := g.nextS
	g.nextS++
	ch := make(chan Event, 8)
	g.subs[id] = ch

	cancel := func() {
		g.subMu.Lock()
		defer g.subMu.Unlock()
		if c, ok := g.subs[id]; ok {
			delete(g.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (g *Gate) publish(ev Event) {
	g.subMu.Lock()
	defer g.subMu.Unlock()
	for _, ch := range g.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

package goSession

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/session"
	"github.com/MrEthical07/goSession/storage"
	"github.com/rs/zerolog"
)

// State is a snapshot of the store handed to subscribers and guards.
type State struct {
	// User is a copy of the current session, nil when unauthenticated.
	User *session.Session
	// Loading is true until the first Initialize completes and while a
	// Login or Signup is pending. Authentication must not be inferred from it.
	Loading bool
	// Authenticated is User != nil.
	Authenticated bool
}

// Store is the single source of truth for the current session.
//
// All methods are safe for concurrent use. Concurrent Login/Signup calls are
// not queued: the last one to finish wins.
type Store struct {
	cfg       Config
	storage   storage.Storage
	client    authclient.Client
	navigator navigation.Navigator
	logger    zerolog.Logger
	audit     *auditDispatcher
	metrics   *Metrics
	now       func() time.Time

	// commitMu serializes every transition that touches storage and the
	// in-memory session together. It is never held across a backend call.
	commitMu sync.Mutex

	mu          sync.RWMutex
	user        *session.Session
	initialized bool
	pending     int
	closed      bool

	subMu   sync.Mutex
	subs    map[uint64]func(State)
	nextSub uint64
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	return State{
		User:          s.user.Clone(),
		Loading:       !s.initialized || s.pending > 0,
		Authenticated: s.user != nil,
	}
}

// User returns a copy of the current session, or nil.
func (s *Store) User() *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsLoading reports whether session state is still indeterminate.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.initialized || s.pending > 0
}

// Config returns a copy of the store configuration.
func (s *Store) Config() Config {
	return s.cfg
}

// Subscribe registers fn to receive a snapshot after every change. fn is
// called synchronously and may read the store but must not change it or
// call Subscribe.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// publish takes the snapshot while holding subMu so subscribers always see
// snapshots in commit order.
func (s *Store) publish() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if len(s.subs) == 0 {
		return
	}
	st := s.State()

	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s.subs[id](st)
	}
}

func (s *Store) begin() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
	s.publish()
}

func (s *Store) end() {
	s.mu.Lock()
	s.pending--
	s.mu.Unlock()
	s.publish()
}

func (s *Store) setUser(u *session.Session) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store) keys() []string {
	return []string{s.cfg.Storage.TokenKey, s.cfg.Storage.UserKey}
}

// purge clears both storage keys. Callers hold commitMu.
func (s *Store) purge(ctx context.Context) {
	if err := s.storage.Delete(ctx, s.keys()...); err != nil {
		s.logger.Error().Err(err).Msg("session purge failed")
	}
}

/*
====================================
INITIALIZE
====================================
*/

// Initialize rehydrates the session from durable storage. It is idempotent
// for unchanged storage. Whatever happens, the loading flag is cleared when
// it returns; a storage read failure leaves the store unauthenticated and is
// returned wrapped in [ErrStorage].
func (s *Store) Initialize(ctx context.Context) error {
	if s.isClosed() {
		return ErrStoreClosed
	}

	s.mu.Lock()
	s.pending++
	s.mu.Unlock()

	s.commitMu.Lock()
	restored, err := s.restore(ctx)
	s.mu.Lock()
	s.user = restored
	s.initialized = true
	s.pending--
	s.mu.Unlock()
	s.commitMu.Unlock()

	s.publish()
	return err
}

func (s *Store) restore(ctx context.Context) (*session.Session, error) {
	token, hasToken, err := s.storage.Get(ctx, s.cfg.Storage.TokenKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("session restore: token read failed")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	record, hasRecord, err := s.storage.Get(ctx, s.cfg.Storage.UserKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("session restore: record read failed")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	switch {
	case !hasToken && !hasRecord:
		s.logger.Debug().Msg("no persisted session")
		return nil, nil
	case hasToken != hasRecord:
		s.purge(ctx)
		s.metrics.Inc(MetricSessionCorrupt)
		s.emitAudit(ctx, AuditSessionCorrupt, "", false, "orphan key", nil)
		s.logger.Warn().Bool("has_token", hasToken).Bool("has_record", hasRecord).Msg("purged orphan session key")
		return nil, nil
	}

	if s.cfg.Token.RejectExpired && tokenExpired(token, s.now(), s.cfg.Token.Leeway) {
		s.purge(ctx)
		s.metrics.Inc(MetricSessionExpired)
		s.emitAudit(ctx, AuditSessionExpired, "", false, "token expired", nil)
		s.logger.Info().Msg("purged expired session")
		return nil, nil
	}

	user, err := session.Decode([]byte(record))
	if err != nil {
		s.purge(ctx)
		s.metrics.Inc(MetricSessionCorrupt)
		s.emitAudit(ctx, AuditSessionCorrupt, "", false, err.Error(), nil)
		s.logger.Warn().Err(err).Msg("purged corrupt session record")
		return nil, nil
	}

	s.metrics.Inc(MetricSessionRestored)
	s.emitAudit(ctx, AuditSessionRestored, user.ID, true, "", nil)
	s.logger.Debug().Str("user_id", user.ID).Msg("session restored")
	return user, nil
}

/*
====================================
LOGIN / SIGNUP
====================================
*/

// Login authenticates email and password through the configured client and,
// on success, persists and adopts the session. Empty credentials fail without
// a backend call. On failure the current session is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) Result {
	if s.isClosed() {
		return failed(ErrStoreClosed, "login failed")
	}

	s.begin()
	defer s.end()

	if email == "" || password == "" {
		s.metrics.Inc(MetricLoginFailure)
		s.emitAudit(ctx, AuditLoginFailure, "", false, ErrMissingCredentials.Error(), nil)
		return failed(ErrMissingCredentials, "invalid credentials")
	}

	start := time.Now()
	grant, err := s.client.Login(ctx, email, password)
	s.metrics.Observe(MetricAuthLatency, time.Since(start))
	if err != nil {
		res := s.backendFailure(err, "login failed")
		s.metrics.Inc(MetricLoginFailure)
		s.emitAudit(ctx, AuditLoginFailure, "", false, res.Err.Error(), nil)
		s.logger.Info().Err(err).Msg("login failed")
		return res
	}

	if res := s.adopt(ctx, grant, "login failed"); !res.Success {
		s.metrics.Inc(MetricLoginFailure)
		s.emitAudit(ctx, AuditLoginFailure, grant.User.ID, false, res.Err.Error(), nil)
		return res
	}

	s.metrics.Inc(MetricLoginSuccess)
	s.emitAudit(ctx, AuditLoginSuccess, grant.User.ID, true, "", nil)
	s.logger.Info().Str("user_id", grant.User.ID).Str("role", string(grant.User.Role)).Msg("login succeeded")
	return succeeded()
}

// Signup creates an account through the configured client and adopts the
// resulting session. All three fields are required.
func (s *Store) Signup(ctx context.Context, email, password, name string) Result {
	if s.isClosed() {
		return failed(ErrStoreClosed, "signup failed")
	}

	s.begin()
	defer s.end()

	if email == "" || password == "" || name == "" {
		s.metrics.Inc(MetricSignupFailure)
		s.emitAudit(ctx, AuditSignupFailure, "", false, ErrMissingSignupFields.Error(), nil)
		return failed(ErrMissingSignupFields, "fill in all fields")
	}

	start := time.Now()
	grant, err := s.client.Signup(ctx, authclient.SignupInput{Email: email, Password: password, Name: name})
	s.metrics.Observe(MetricAuthLatency, time.Since(start))
	if err != nil {
		res := s.backendFailure(err, "signup failed")
		s.metrics.Inc(MetricSignupFailure)
		s.emitAudit(ctx, AuditSignupFailure, "", false, res.Err.Error(), nil)
		s.logger.Info().Err(err).Msg("signup failed")
		return res
	}

	if res := s.adopt(ctx, grant, "signup failed"); !res.Success {
		s.metrics.Inc(MetricSignupFailure)
		s.emitAudit(ctx, AuditSignupFailure, grant.User.ID, false, res.Err.Error(), nil)
		return res
	}

	s.metrics.Inc(MetricSignupSuccess)
	s.emitAudit(ctx, AuditSignupSuccess, grant.User.ID, true, "", map[string]string{"plan": string(grant.User.Plan)})
	s.logger.Info().Str("user_id", grant.User.ID).Msg("signup succeeded")
	return succeeded()
}

func (s *Store) backendFailure(err error, fallback string) Result {
	var rejected *authclient.RejectedError
	switch {
	case errors.As(err, &rejected):
		msg := rejected.Message
		if msg == "" {
			msg = fallback
		}
		return failed(fmt.Errorf("%w: %s", ErrRejected, rejected.Message), msg)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return failed(fmt.Errorf("%w: %v", ErrCancelled, err), fallback)
	default:
		return failed(fmt.Errorf("%w: %v", ErrAuthBackend, err), fallback)
	}
}

// adopt writes the token and record as one pair, then makes the grant the
// current session.
func (s *Store) adopt(ctx context.Context, grant authclient.Grant, fallback string) Result {
	if grant.Token == "" {
		return failed(fmt.Errorf("%w: empty token", ErrAuthBackend), fallback)
	}
	user := grant.User
	data, err := session.Encode(&user)
	if err != nil {
		return failed(fmt.Errorf("%w: %v", ErrAuthBackend, err), fallback)
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if err := s.storage.SetMany(ctx, map[string]string{
		s.cfg.Storage.TokenKey: grant.Token,
		s.cfg.Storage.UserKey:  string(data),
	}); err != nil {
		s.metrics.Inc(MetricPersistFailure)
		s.logger.Error().Err(err).Msg("session persist failed")
		return failed(fmt.Errorf("%w: %v", ErrPersist, err), fallback)
	}

	s.setUser(&user)
	return succeeded()
}

/*
====================================
LOGOUT / UNAUTHORIZED
====================================
*/

// Logout clears storage and the current session. It never fails: storage
// errors are logged and the in-memory session is cleared regardless.
func (s *Store) Logout(ctx context.Context) {
	s.commitMu.Lock()
	prev := s.User()
	s.purge(ctx)
	s.setUser(nil)
	s.commitMu.Unlock()

	s.publish()

	userID := ""
	if prev != nil {
		userID = prev.ID
	}
	s.metrics.Inc(MetricLogout)
	s.emitAudit(ctx, AuditLogout, userID, true, "", nil)
	s.logger.Info().Str("user_id", userID).Msg("logout")
}

// HandleUnauthorized is the subscriber for the API layer's unauthorized
// event: the session is purged and the navigator, when configured, is asked
// to replace the current view with the login view. No message is shown.
func (s *Store) HandleUnauthorized(ctx context.Context) {
	s.commitMu.Lock()
	prev := s.User()
	s.purge(ctx)
	s.setUser(nil)
	s.commitMu.Unlock()

	s.publish()

	userID := ""
	if prev != nil {
		userID = prev.ID
	}
	s.metrics.Inc(MetricSessionUnauthorized)
	s.emitAudit(ctx, AuditSessionUnauthorized, userID, false, "unauthorized response", nil)
	s.logger.Warn().Str("user_id", userID).Msg("session invalidated by unauthorized response")

	if s.navigator != nil {
		s.navigator.Navigate(ctx, navigation.At(s.cfg.Routes.Login), true)
	}
}

// Token returns the persisted token, or "" when none is stored. It lets the
// store act as the API layer's token source.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, ok, err := s.storage.Get(ctx, s.cfg.Storage.TokenKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

/*
====================================
REFRESH / UPDATE
====================================
*/

// RefreshUser re-reads the persisted record and adopts it, reconciling an
// update written to storage out of band. Nothing happens when no session is
// active and none is persisted. An active session whose token or record is
// gone is ended, and a corrupt record is purged.
func (s *Store) RefreshUser(ctx context.Context) error {
	s.commitMu.Lock()

	token, hasToken, err := s.storage.Get(ctx, s.cfg.Storage.TokenKey)
	if err != nil {
		s.commitMu.Unlock()
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	record, hasRecord, err := s.storage.Get(ctx, s.cfg.Storage.UserKey)
	if err != nil {
		s.commitMu.Unlock()
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !hasRecord || !hasToken || token == "" {
		if s.User() == nil {
			s.commitMu.Unlock()
			return nil
		}
		s.dropIncomplete(ctx)
		return nil
	}

	user, err := session.Decode([]byte(record))
	if err != nil {
		s.purge(ctx)
		s.setUser(nil)
		s.commitMu.Unlock()
		s.publish()

		s.metrics.Inc(MetricSessionCorrupt)
		s.emitAudit(ctx, AuditSessionCorrupt, "", false, err.Error(), nil)
		s.logger.Warn().Err(err).Msg("purged corrupt session record on refresh")
		return nil
	}

	s.setUser(user)
	s.commitMu.Unlock()
	s.publish()

	s.metrics.Inc(MetricUserRefreshed)
	s.emitAudit(ctx, AuditUserRefreshed, user.ID, true, "", nil)
	return nil
}

// dropIncomplete ends the current session after its persisted pair went
// missing underneath it (expiry or an out-of-band delete). The caller holds
// commitMu; it is released here.
func (s *Store) dropIncomplete(ctx context.Context) {
	s.purge(ctx)
	s.setUser(nil)
	s.commitMu.Unlock()
	s.publish()

	s.logger.Info().Msg("persisted session gone, signed out")
}

// UpdateUser merges patch into the current session, persists the merged
// record and adopts it. Without an active session it does nothing; an active
// session whose token is no longer persisted is ended. Fields absent from
// patch are never changed.
func (s *Store) UpdateUser(ctx context.Context, patch session.Patch) error {
	if err := patch.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	s.commitMu.Lock()

	current := s.User()
	if current == nil {
		s.commitMu.Unlock()
		return nil
	}

	token, hasToken, err := s.storage.Get(ctx, s.cfg.Storage.TokenKey)
	if err != nil {
		s.commitMu.Unlock()
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !hasToken || token == "" {
		s.dropIncomplete(ctx)
		return nil
	}

	merged := patch.Apply(*current)
	data, err := session.Encode(&merged)
	if err != nil {
		s.commitMu.Unlock()
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	// Both keys are rewritten so they share one expiry on TTL backends.
	if err := s.storage.SetMany(ctx, map[string]string{
		s.cfg.Storage.TokenKey: token,
		s.cfg.Storage.UserKey:  string(data),
	}); err != nil {
		s.commitMu.Unlock()
		s.metrics.Inc(MetricPersistFailure)
		s.logger.Error().Err(err).Str("user_id", merged.ID).Msg("session update persist failed")
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	s.setUser(&merged)
	s.commitMu.Unlock()
	s.publish()

	s.metrics.Inc(MetricUserUpdated)
	s.emitAudit(ctx, AuditUserUpdated, merged.ID, true, "", nil)
	s.logger.Debug().Str("user_id", merged.ID).Msg("session updated")
	return nil
}

/*
====================================
OBSERVABILITY / SHUTDOWN
====================================
*/

func (s *Store) emitAudit(ctx context.Context, eventType, userID string, success bool, errMsg string, metadata map[string]string) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, AuditEvent{
		Timestamp: s.now(),
		EventType: eventType,
		UserID:    userID,
		Success:   success,
		Error:     errMsg,
		Metadata:  metadata,
	})
}

// MetricsSnapshot returns the current counters.
func (s *Store) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// AuditDropped returns the number of audit events dropped because the
// dispatcher buffer was full.
func (s *Store) AuditDropped() uint64 {
	return s.audit.Dropped()
}

// Close flushes pending audit events. Later Login, Signup and Initialize
// calls fail with [ErrStoreClosed].
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.audit.Close()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/ports"
	"github.com/feedbackhub/feedback-client/internal/pkg/metrics"
	"github.com/feedbackhub/feedback-client/internal/pkg/tokeninfo"
)

// userFacing is implemented by transport errors that carry a message the
// backend meant for the person at the keyboard.
type userFacing interface {
	UserMessage() string
}

// SessionStore is the single owner of the authentication state: the current
// user, the bootstrap phase, and the persisted credential token. Every other
// component reads it through Snapshot or Subscribe.
type SessionStore struct {
	api    ports.AuthAPI
	tokens ports.TokenStore
	log    zerolog.Logger

	// wmu serializes credential writes with generation changes, so a
	// compare-then-write on the token store cannot interleave with a login
	// or logout.
	wmu sync.Mutex
	// rejected is the last credential a superseded bootstrap found invalid.
	rejected string

	mu    sync.RWMutex
	user  *domain.User
	phase domain.Phase
	// token is the credential the current user was confirmed with.
	token string
	// gen is bumped by every login, logout and invalidation so a slow
	// bootstrap or login cannot overwrite a newer session.
	gen uint64

	bootOnce sync.Once
	booted   chan struct{}

	subMu  sync.Mutex
	subs   map[uint64]chan domain.Snapshot
	nextID uint64
}

// NewSessionStore returns a store in the pending phase with no user.
func NewSessionStore(api ports.AuthAPI, tokens ports.TokenStore, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		api:    api,
		tokens: tokens,
		log:    log.With().Str("component", "session").Logger(),
		phase:  domain.PhasePending,
		booted: make(chan struct{}),
		subs:   make(map[uint64]chan domain.Snapshot),
	}
}

// Bootstrap validates the persisted credential against the backend. The check
// runs once per store; concurrent and later callers wait for that run and
// return when the phase is resolved. Failures are absorbed into the
// logged-out state.
func (s *SessionStore) Bootstrap(ctx context.Context) {
	s.bootOnce.Do(func() {
		defer close(s.booted)
		s.bootstrap(ctx)
	})
	<-s.booted
}

// Ready is closed once the bootstrap phase has resolved.
func (s *SessionStore) Ready() <-chan struct{} {
	return s.booted
}

func (s *SessionStore) bootstrap(ctx context.Context) {
	gen := s.generation()

	token, err := s.tokens.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not read persisted credential")
		s.resolve(gen, nil, "", "bootstrap_anonymous")
		return
	}
	if token == "" {
		s.log.Debug().Msg("no persisted credential")
		s.resolve(gen, nil, "", "bootstrap_anonymous")
		return
	}

	claims := tokeninfo.Peek(token)
	user, err := s.api.Profile(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Caller gave up; the credential was never judged, so keep it.
			s.log.Debug().Err(err).Msg("bootstrap cancelled")
			s.resolve(gen, nil, "", "bootstrap_anonymous")
			return
		}
		s.log.Warn().
			Err(err).
			Str("subject", claims.Subject).
			Bool("expired", claims.Expired()).
			Msg("persisted credential rejected, clearing session")
		s.discard(ctx, gen, token)
		return
	}

	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("session restored")
	s.resolve(gen, user, token, "bootstrap_authenticated")
}

// resolve ends the pending phase. The user is only applied when no login or
// logout happened while the profile fetch was in flight.
func (s *SessionStore) resolve(gen uint64, user *domain.User, token, event string) {
	s.mu.Lock()
	if s.gen == gen {
		s.user = cloneUser(user)
		s.token = token
	}
	s.phase = domain.PhaseResolved
	snap := s.snapshotLocked()
	s.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues(event).Inc()
	s.publish(snap)
}

// discard drops a credential bootstrap found invalid. The token store is only
// cleared while it still holds that credential and no newer session exists.
func (s *SessionStore) discard(ctx context.Context, gen uint64, token string) {
	s.wmu.Lock()
	if s.generation() == gen {
		s.clearIfStored(ctx, token)
	} else {
		s.rejected = token
	}
	s.wmu.Unlock()

	s.resolve(gen, nil, "", "bootstrap_invalidated")
}

// clearIfStored clears the token store when it still holds token. Callers
// hold wmu.
func (s *SessionStore) clearIfStored(ctx context.Context, token string) {
	stored, err := s.tokens.Load(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("could not read persisted credential")
		return
	}
	if stored != token {
		return
	}
	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear rejected credential")
	}
}

// Invalidate ends the session when the backend rejects token, the credential
// an authenticated call was sent with. It is a no-op unless token is the one
// the current user was confirmed with, so a late rejection of an old or
// unconfirmed credential never logs out a newer session.
func (s *SessionStore) Invalidate(ctx context.Context, token string) {
	if token == "" {
		return
	}

	s.wmu.Lock()
	s.mu.RLock()
	current := s.user != nil && s.token == token
	s.mu.RUnlock()
	if !current {
		s.wmu.Unlock()
		return
	}

	s.clearIfStored(ctx, token)

	s.mu.Lock()
	s.gen++
	s.user = nil
	s.token = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.wmu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues("invalidated").Inc()
	s.log.Warn().Msg("credential rejected by the backend, logged out")
	s.publish(snap)
}

// Login exchanges credentials for a token, persists it, and confirms the
// identity with a profile fetch. A non-nil error is always a *domain.AuthError
// whose Reason can be shown as-is. On failure the previous user and persisted
// token are left as they were.
func (s *SessionStore) Login(ctx context.Context, username, password string) (*domain.User, error) {
	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, s.loginFailed(err, "login rejected")
	}
	if token == "" {
		return nil, s.loginFailed(domain.ErrMalformedResponse, "login response carried no token")
	}

	s.wmu.Lock()
	previous, err := s.tokens.Load(ctx)
	if err != nil {
		s.wmu.Unlock()
		return nil, s.loginFailed(err, "could not read persisted credential")
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		s.wmu.Unlock()
		return nil, s.loginFailed(err, "could not persist credential")
	}
	gen := s.bump()
	s.wmu.Unlock()

	user, err := s.api.Profile(ctx)
	if err != nil {
		s.restore(ctx, gen, previous)
		return nil, s.loginFailed(err, "profile fetch after login failed")
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil, s.loginFailed(errLoginSuperseded, "login superseded")
	}
	s.user = cloneUser(user)
	s.token = token
	snap := s.snapshotLocked()
	s.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues("login").Inc()
	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("logged in")
	s.publish(snap)
	return cloneUser(user), nil
}

var errLoginSuperseded = errors.New("a newer login or logout took over the session")

// restore puts back the credential that was stored before a failed login,
// unless another session change happened since.
func (s *SessionStore) restore(ctx context.Context, gen uint64, previous string) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if s.generation() != gen {
		return
	}

	var err error
	if previous == "" || previous == s.rejected {
		err = s.tokens.Clear(ctx)
	} else {
		err = s.tokens.Save(ctx, previous)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to restore previous credential")
	}
}

func (s *SessionStore) loginFailed(err error, msg string) error {
	metrics.SessionTransitionsTotal.WithLabelValues("login_failed").Inc()
	s.log.Info().Err(err).Msg(msg)
	return &domain.AuthError{Reason: failureReason(err, domain.DefaultLoginFailure), Err: err}
}

// failureReason prefers the backend's own explanation over a generic message.
func failureReason(err error, fallback string) string {
	var uf userFacing
	if errors.As(err, &uf) && uf.UserMessage() != "" {
		return uf.UserMessage()
	}
	return fallback
}

// Register creates an account without touching the current session. A
// non-nil error is a *domain.AuthError.
func (s *SessionStore) Register(ctx context.Context, in domain.Registration) (*domain.User, error) {
	user, err := s.api.Register(ctx, in)
	if err != nil {
		s.log.Info().Err(err).Str("username", in.Username).Msg("registration rejected")
		return nil, &domain.AuthError{Reason: failureReason(err, domain.DefaultRegisterFailure), Err: err}
	}
	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("account registered")
	return user, nil
}

// Logout forgets the persisted token and the current user. It never contacts
// the backend and is a no-op when already logged out.
func (s *SessionStore) Logout(ctx context.Context) {
	s.wmu.Lock()
	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear persisted credential")
	}

	s.mu.Lock()
	s.gen++
	wasAuthenticated := s.user != nil
	s.user = nil
	s.token = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.wmu.Unlock()

	if !wasAuthenticated {
		return
	}
	metrics.SessionTransitionsTotal.WithLabelValues("logout").Inc()
	s.log.Info().Msg("logged out")
	s.publish(snap)
}

// DeleteAccount removes the current user's account on the backend, then logs
// out locally. On failure the session is left as it was.
func (s *SessionStore) DeleteAccount(ctx context.Context) error {
	u := s.Snapshot().User
	if u == nil {
		return domain.ErrNotAuthenticated
	}
	if err := s.api.DeleteAccount(ctx); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.log.Info().Str("username", u.Username).Msg("account deleted")
	s.Logout(ctx)
	return nil
}

// Snapshot returns a copy of the current session state.
func (s *SessionStore) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives the latest snapshot after every
// change, and a func that stops delivery and closes the channel. Slow readers
// only see the newest snapshot.
func (s *SessionStore) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			close(ch)
			s.subMu.Unlock()
		})
	}
}

func (s *SessionStore) publish(snap domain.Snapshot) {
	if snap.User != nil {
		metrics.SessionAuthenticated.Set(1)
	} else {
		metrics.SessionAuthenticated.Set(0)
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *SessionStore) bump() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

func (s *SessionStore) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *SessionStore) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{User: cloneUser(s.user), Phase: s.phase}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
	"github.com/yigit/lecturealert/internal/pkg/metrics"
	"github.com/yigit/lecturealert/internal/pkg/validation"
)

// Status is the lifecycle state of a session
type Status string

const (
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// EventKind names an identity transition
type EventKind string

const (
	EventAnonymous EventKind = "anonymous"
	EventRestored  EventKind = "restored"
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
	EventExpired   EventKind = "expired"
)

const subscriberBuffer = 16

// Grant is a successful sign-in
type Grant struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	Identity  models.Identity
}

// AuthBackend is the account service behind a provider
type AuthBackend interface {
	SignIn(ctx context.Context, email, password string) (*Grant, error)
	SignUp(ctx context.Context, form validation.SignUpForm) error
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*models.Identity, error)
}

// State is a point-in-time view of a provider
type State struct {
	Status     Status           `json:"status"`
	Identity   *models.Identity `json:"user"`
	Generation uint64           `json:"generation"`
}

// Event is published to subscribers after every identity change
type Event struct {
	Kind       EventKind        `json:"kind"`
	Identity   *models.Identity `json:"user"`
	Generation uint64           `json:"generation"`
}

// Provider owns the identity of one browser session. Mutations are
// serialized; reads never wait for a backend call.
type Provider struct {
	id      string
	backend AuthBackend
	store   Store
	now     func() time.Time
	log     zerolog.Logger

	// held for the whole of Init, SignIn, SignUp and SignOut
	writeMu sync.Mutex

	mu       sync.RWMutex
	status   Status
	identity *models.Identity
	token    string
	gen      uint64
	kind     EventKind
	subs     map[int]chan Event
	nextSub  int
	closed   bool

	ready     chan struct{}
	readyOnce sync.Once
}

// NewProvider creates a provider in the loading state. Call Init to resolve it.
func NewProvider(id string, backend AuthBackend, store Store, log zerolog.Logger) *Provider {
	return &Provider{
		id:      id,
		backend: backend,
		store:   store,
		now:     time.Now,
		log:     log.With().Str("session", id).Logger(),
		status:  StatusLoading,
		subs:    make(map[int]chan Event),
		ready:   make(chan struct{}),
	}
}

// ID returns the session id
func (p *Provider) ID() string { return p.id }

// Init restores the stored session. Any failure resolves to anonymous; the
// stored token is deleted only when the backend rejects it.
func (p *Provider) Init(ctx context.Context) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	defer p.markReady()

	token, err := p.store.Load(ctx, p.id)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			p.log.Warn().Err(err).Msg("Failed to load stored session")
		}
		p.resolve(nil, "", EventAnonymous)
		return
	}

	identity, err := p.backend.CurrentSession(ctx, token)
	if err != nil {
		if !sessionGone(err) {
			// stored token is kept so a later Init can restore it
			p.log.Warn().Err(err).Msg("Failed to restore stored session")
			p.resolve(nil, "", EventAnonymous)
			return
		}
		p.log.Info().Err(err).Msg("Stored session is no longer valid")
		if delErr := p.store.Delete(ctx, p.id); delErr != nil {
			p.log.Warn().Err(delErr).Msg("Failed to delete stale session")
		}
		p.resolve(nil, "", EventExpired)
		return
	}
	p.resolve(identity, token, EventRestored)
}

// startAnonymous resolves a fresh provider to signed out without reading the store
func (p *Provider) startAnonymous() {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	defer p.markReady()
	p.resolve(nil, "", EventAnonymous)
}

func sessionGone(err error) bool {
	return errors.Is(err, apperrors.ErrTokenInvalid) ||
		errors.Is(err, apperrors.ErrTokenExpired) ||
		errors.Is(err, apperrors.ErrTokenRevoked) ||
		errors.Is(err, apperrors.ErrUserNotFound)
}

// WaitReady blocks until the first Init finished or ctx is done
func (p *Provider) WaitReady(ctx context.Context) error {
	select {
	case <-p.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Provider) markReady() {
	p.readyOnce.Do(func() { close(p.ready) })
}

// SignIn validates the form, then asks the backend. On failure the
// current identity is left untouched.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	form := validation.SignInForm{Email: email, Password: password}
	form.Normalize()
	if fields := validation.Validate(form); fields != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("sign_in", "invalid").Inc()
		return nil, validationError(fields)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	grant, err := p.backend.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("sign_in", "failure").Inc()
		p.log.Info().Err(err).Msg("Sign-in failed")
		return nil, backendError(err)
	}
	metrics.AuthAttemptsTotal.WithLabelValues("sign_in", "success").Inc()

	if ttl := grant.ExpiresAt.Sub(p.now()); ttl > 0 {
		if err := p.store.Save(ctx, p.id, grant.Token, ttl); err != nil {
			p.log.Warn().Err(err).Msg("Failed to persist session, it will not survive a restart")
		}
	}

	identity := grant.Identity
	p.resolve(&identity, grant.Token, EventSignedIn)
	return &identity, nil
}

// SignUp validates the form and creates a pending account. It never signs in.
func (p *Provider) SignUp(ctx context.Context, form validation.SignUpForm) error {
	form.Normalize()
	if fields := validation.Validate(form); fields != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("sign_up", "invalid").Inc()
		return validationError(fields)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if err := p.backend.SignUp(ctx, form); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("sign_up", "failure").Inc()
		p.log.Info().Err(err).Msg("Sign-up failed")
		return backendError(err)
	}
	metrics.AuthAttemptsTotal.WithLabelValues("sign_up", "success").Inc()
	return nil
}

// SignOut revokes the session. A backend failure keeps the identity.
func (p *Provider) SignOut(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()

	if token != "" {
		if err := p.backend.SignOut(ctx, token); err != nil {
			metrics.AuthAttemptsTotal.WithLabelValues("sign_out", "failure").Inc()
			p.log.Warn().Err(err).Msg("Sign-out failed")
			return &AuthError{Message: MsgSignOutFailed, Err: err}
		}
	}
	metrics.AuthAttemptsTotal.WithLabelValues("sign_out", "success").Inc()

	if err := p.store.Delete(ctx, p.id); err != nil {
		p.log.Warn().Err(err).Msg("Failed to delete stored session")
	}
	p.resolve(nil, "", EventSignedOut)
	return nil
}

// Current returns the provider state
func (p *Provider) Current() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return State{Status: p.status, Identity: cloneIdentity(p.identity), Generation: p.gen}
}

// Identity returns the current identity, nil when absent, and its generation
func (p *Provider) Identity() (*models.Identity, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneIdentity(p.identity), p.gen
}

// Generation increments on every identity change
func (p *Provider) Generation() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gen
}

// lastEvent rebuilds the event of the latest identity change
func (p *Provider) lastEvent() Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Event{Kind: p.kind, Identity: cloneIdentity(p.identity), Generation: p.gen}
}

// Subscribe returns a channel of identity changes and a func that stops delivery
func (p *Provider) Subscribe() (<-chan Event, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if p.closed {
		close(ch)
		return ch, func() {}
	}
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if c, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(c)
			}
		})
	}
}

// Close stops every subscription. The provider keeps answering reads.
func (p *Provider) Close() {
	p.markReady()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}

// resolve sets the identity, leaving loading, and publishes when it changed.
// Caller holds writeMu.
func (p *Provider) resolve(identity *models.Identity, token string, kind EventKind) {
	p.mu.Lock()
	defer p.mu.Unlock()

	changed := !sameIdentity(p.identity, identity)
	wasLoading := p.status == StatusLoading

	p.identity = cloneIdentity(identity)
	p.token = token
	if identity != nil {
		p.status = StatusAuthenticated
	} else {
		p.status = StatusAnonymous
	}
	if !changed && !wasLoading {
		return
	}
	p.gen++
	p.kind = kind

	ev := Event{Kind: kind, Identity: cloneIdentity(identity), Generation: p.gen}
	for _, ch := range p.subs {
		select {
		case ch <- ev:
		default:
			p.log.Warn().Str("kind", string(kind)).Msg("Subscriber is not keeping up, event dropped")
		}
	}
}

func sameIdentity(a, b *models.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneIdentity(i *models.Identity) *models.Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	currentUserKey  = "current"
	minPasswordSize = 6
)

type account struct {
	user         entity.User
	passwordHash []byte
}

// Provider is a local email/password identity store for a single client.
// The signed-in user expires after the configured TTL and subscribers are told.
type Provider struct {
	accounts *cache.Cache
	sessions *cache.Cache
	ttl      time.Duration
	hashCost int
	logger   *zap.Logger

	mu          sync.Mutex
	subscribers map[int]func(*entity.User)
	nextSubID   int
}

type Option func(*Provider)

// WithHashCost overrides the bcrypt cost
func WithHashCost(cost int) Option {
	return func(p *Provider) {
		p.hashCost = cost
	}
}

func NewProvider(cfg config.AuthConfig, logger *zap.Logger, opts ...Option) *Provider {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	cleanup := time.Minute
	if ttl > 0 && ttl < cleanup {
		cleanup = ttl
	}

	p := &Provider{
		accounts:    cache.New(cache.NoExpiration, 0),
		sessions:    cache.New(ttl, cleanup),
		ttl:         ttl,
		hashCost:    bcrypt.DefaultCost,
		logger:      logger,
		subscribers: make(map[int]func(*entity.User)),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.sessions.OnEvicted(func(_ string, v any) {
		if u, ok := v.(entity.User); ok {
			p.logger.Info("user signed out", zap.String("user_id", u.ID))
		}
		p.notify(nil)
	})

	return p
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("invalid email %q: %w", email, err)
	}
	return strings.ToLower(addr.Address), nil
}

// SignUp registers a new account and signs it in
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (*entity.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordSize {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordSize)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc := account{
		user: entity.User{
			ID:          uuid.NewString(),
			Email:       email,
			DisplayName: strings.TrimSpace(displayName),
		},
		passwordHash: hash,
	}
	if err := p.accounts.Add(email, acc, cache.NoExpiration); err != nil {
		return nil, entity.ErrUserExists
	}

	ctxzap.Info(ctx, "account created", zap.String("user_id", acc.user.ID))

	return p.signIn(ctx, acc.user), nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*entity.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	v, ok := p.accounts.Get(email)
	if !ok {
		return nil, entity.ErrInvalidCredentials
	}
	acc := v.(account)

	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	return p.signIn(ctx, acc.user), nil
}

func (p *Provider) signIn(ctx context.Context, user entity.User) *entity.User {
	user.SignedInAt = time.Now()
	p.sessions.Set(currentUserKey, user, cache.DefaultExpiration)

	ctxzap.Info(ctx, "user signed in", zap.String("user_id", user.ID))

	p.notify(&user)
	return &user
}

// SignOut ends the current sign-in. Subscribers are notified through eviction.
func (p *Provider) SignOut(_ context.Context) {
	p.sessions.Delete(currentUserKey)
}

// CurrentUser returns the signed-in user or nil
func (p *Provider) CurrentUser() *entity.User {
	v, ok := p.sessions.Get(currentUserKey)
	if !ok {
		return nil
	}
	user := v.(entity.User)
	return &user
}

// OnAuthChange registers cb for sign-in and sign-out. The returned func unsubscribes.
func (p *Provider) OnAuthChange(cb func(*entity.User)) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = cb
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

func (p *Provider) notify(user *entity.User) {
	p.mu.Lock()
	callbacks := make([]func(*entity.User), 0, len(p.subscribers))
	for _, cb := range p.subscribers {
		callbacks = append(callbacks, cb)
	}
	p.mu.Unlock()

	for _, cb := range callbacks {
		if user == nil {
			cb(nil)
			continue
		}
		u := *user
		cb(&u)
	}
}

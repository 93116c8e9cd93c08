package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoToken    = errors.New("no access token")
	ErrNoExpiry   = errors.New("token has no exp claim")
	ErrNilRefresh = errors.New("refresh func is required")
)

// TokenProvider supplies the bearer token injected into every request.
// Invalidate is called when the server answers 401.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context)
}

type StaticTokenProvider struct {
	token string
}

func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

func (p *StaticTokenProvider) Token(context.Context) (string, error) {
	if p.token == "" {
		return "", ErrNoToken
	}
	return p.token, nil
}

func (p *StaticTokenProvider) Invalidate(context.Context) {}

// JWTExpiry reads the exp claim of token. The signature is not verified:
// the client only needs to know when to refresh.
func JWTExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// RefreshFunc obtains a fresh access token, e.g. by exchanging a refresh token.
type RefreshFunc func(ctx context.Context) (string, error)

// RefreshingTokenProvider caches the token returned by refresh and asks for a new
// one when it was invalidated or its exp claim is within Leeway.
type RefreshingTokenProvider struct {
	refresh RefreshFunc
	leeway  time.Duration
	now     func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewRefreshingTokenProvider(refresh RefreshFunc, leeway time.Duration) (*RefreshingTokenProvider, error) {
	if refresh == nil {
		return nil, ErrNilRefresh
	}
	return &RefreshingTokenProvider{
		refresh: refresh,
		leeway:  leeway,
		now:     time.Now,
	}, nil
}

func (p *RefreshingTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && !p.expiringLocked() {
		return p.token, nil
	}

	token, err := p.refresh(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Msg("Failed to refresh access token")
		return "", err
	}
	if token == "" {
		return "", ErrNoToken
	}

	p.token = token
	p.expires = time.Time{}
	if exp, err := JWTExpiry(token); err == nil {
		p.expires = exp
	} else {
		log.Debug().
			Err(err).
			Msg("Access token expiry unknown, caching until invalidated")
	}
	return p.token, nil
}

func (p *RefreshingTokenProvider) Invalidate(context.Context) {
	p.mu.Lock()
	p.token = ""
	p.expires = time.Time{}
	p.mu.Unlock()
}

func (p *RefreshingTokenProvider) expiringLocked() bool {
	if p.expires.IsZero() {
		return false
	}
	return !p.now().Add(p.leeway).Before(p.expires)
}

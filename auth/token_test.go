package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestJWTExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	got, err := JWTExpiry(signedToken(t, exp))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

func TestJWTExpiry_Malformed(t *testing.T) {
	_, err := JWTExpiry("not-a-jwt")
	assert.Error(t, err)
}

func TestStaticTokenProvider(t *testing.T) {
	token, err := NewStaticTokenProvider("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = NewStaticTokenProvider("").Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestRefreshingTokenProvider_CachesUntilInvalidated(t *testing.T) {
	var calls atomic.Int32
	provider, err := NewRefreshingTokenProvider(func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "opaque-token", nil
	}, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		token, err := provider.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "opaque-token", token)
	}
	assert.Equal(t, int32(1), calls.Load())

	provider.Invalidate(ctx)
	_, err = provider.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRefreshingTokenProvider_RefreshesNearExpiry(t *testing.T) {
	now := time.Now()
	expiring := signedToken(t, now.Add(30*time.Second))
	fresh := signedToken(t, now.Add(time.Hour))

	tokens := []string{expiring, fresh}
	var calls atomic.Int32
	provider, err := NewRefreshingTokenProvider(func(ctx context.Context) (string, error) {
		n := calls.Add(1)
		return tokens[n-1], nil
	}, time.Minute)
	require.NoError(t, err)

	first, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expiring, first)

	second, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, second)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRefreshingTokenProvider_ConcurrentCallersShareRefresh(t *testing.T) {
	var calls atomic.Int32
	provider, err := NewRefreshingTokenProvider(func(ctx context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "shared", nil
	}, 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := provider.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "shared", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestRefreshingTokenProvider_RefreshError(t *testing.T) {
	refreshErr := errors.New("refresh token revoked")
	provider, err := NewRefreshingTokenProvider(func(ctx context.Context) (string, error) {
		return "", refreshErr
	}, 0)
	require.NoError(t, err)

	_, err = provider.Token(context.Background())
	assert.ErrorIs(t, err, refreshErr)
}

func TestNewRefreshingTokenProvider_NilRefresh(t *testing.T) {
	_, err := NewRefreshingTokenProvider(nil, 0)
	assert.ErrorIs(t, err, ErrNilRefresh)
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenStore(client, "test:token"), mr
}

func TestTokenStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save(ctx, "opaque-token"))
	got, err := mr.Get("test:token")
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", got)
	assert.Zero(t, mr.TTL("test:token"), "opaque tokens never expire in redis")

	token, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists("test:token"))
}

func TestTokenStore_TTLFollowsTokenExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": now.Add(30 * time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), signed))
	assert.Equal(t, 30*time.Minute, mr.TTL("test:token"))
}

func TestTokenStore_DefaultKey(t *testing.T) {
	store := NewTokenStore(nil, "")
	assert.Equal(t, DefaultKey, store.key)
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestTokenStore_Ping(t *testing.T) {
	store, mr := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}

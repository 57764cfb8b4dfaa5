package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupCache(t *testing.T) (*PermissionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPermissionCache(client, time.Minute, zaptest.NewLogger(t)), mr
}

type countingLoader struct {
	perms []string
	err   error
	calls int
}

func (l *countingLoader) load(context.Context, uuid.UUID) ([]string, error) {
	l.calls++
	return l.perms, l.err
}

func TestPermissions_CachesAfterFirstLoad(t *testing.T) {
	c, mr := setupCache(t)
	roleID := uuid.New()
	loader := &countingLoader{perms: []string{"BUILDINGS:READ", "APARTMENTS:READ"}}

	first, err := c.Permissions(context.Background(), roleID, loader.load)
	require.NoError(t, err)
	second, err := c.Permissions(context.Background(), roleID, loader.load)
	require.NoError(t, err)

	assert.Equal(t, loader.perms, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loader.calls)
	assert.True(t, mr.Exists(permissionKey(roleID)))
	assert.Equal(t, time.Minute, mr.TTL(permissionKey(roleID)))
}

func TestPermissions_ExpiresWithTTL(t *testing.T) {
	c, mr := setupCache(t)
	roleID := uuid.New()
	loader := &countingLoader{perms: []string{"REPORTS:READ"}}

	_, err := c.Permissions(context.Background(), roleID, loader.load)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = c.Permissions(context.Background(), roleID, loader.load)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestPermissions_EmptySetIsCached(t *testing.T) {
	c, _ := setupCache(t)
	loader := &countingLoader{}

	perms, err := c.Permissions(context.Background(), uuid.New(), loader.load)
	require.NoError(t, err)
	assert.NotNil(t, perms)
	assert.Empty(t, perms)
}

func TestPermissions_LoaderErrorIsNotCached(t *testing.T) {
	c, mr := setupCache(t)
	roleID := uuid.New()
	loader := &countingLoader{err: errors.New("db down")}

	_, err := c.Permissions(context.Background(), roleID, loader.load)
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists(permissionKey(roleID)))
}

func TestPermissions_CorruptEntryReloads(t *testing.T) {
	c, mr := setupCache(t)
	roleID := uuid.New()
	require.NoError(t, mr.Set(permissionKey(roleID), "{not json"))
	loader := &countingLoader{perms: []string{"USERS:READ"}}

	perms, err := c.Permissions(context.Background(), roleID, loader.load)
	require.NoError(t, err)
	assert.Equal(t, []string{"USERS:READ"}, perms)
	assert.Equal(t, 1, loader.calls)
}

func TestPermissions_RedisDownFallsBackToLoader(t *testing.T) {
	c, mr := setupCache(t)
	mr.Close()
	loader := &countingLoader{perms: []string{"USERS:READ"}}

	perms, err := c.Permissions(context.Background(), uuid.New(), loader.load)
	require.NoError(t, err)
	assert.Equal(t, []string{"USERS:READ"}, perms)
}

func TestInvalidate(t *testing.T) {
	c, mr := setupCache(t)
	roleID := uuid.New()
	loader := &countingLoader{perms: []string{"USERS:READ"}}

	_, err := c.Permissions(context.Background(), roleID, loader.load)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(context.Background(), roleID))
	assert.False(t, mr.Exists(permissionKey(roleID)))

	_, err = c.Permissions(context.Background(), roleID, loader.load)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestNilCache(t *testing.T) {
	var c *PermissionCache
	loader := &countingLoader{perms: []string{"USERS:READ"}}

	perms, err := c.Permissions(context.Background(), uuid.New(), loader.load)
	require.NoError(t, err)
	assert.Equal(t, []string{"USERS:READ"}, perms)
	assert.NoError(t, c.Invalidate(context.Background(), uuid.New()))

	_, err = c.Permissions(context.Background(), uuid.New(), nil)
	assert.Error(t, err)
}

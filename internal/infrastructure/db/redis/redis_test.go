package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// ---------------------------------------------------------------------------
// DocumentCache
// ---------------------------------------------------------------------------

func TestDocumentCache_GetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewDocumentCache(client, 0)

	mock.ExpectGet("cache:doc:jobs:job-1").RedisNil()

	var job domain.Job
	err := cache.Get(context.Background(), "doc:jobs:job-1", &job)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentCache_SetThenGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewDocumentCache(client, time.Hour)
	job := &domain.Job{ID: "job-1", Title: "Backend Engineer", Status: domain.JobOpen}
	raw, err := json.Marshal(job)
	require.NoError(t, err)

	mock.ExpectSet("cache:doc:jobs:job-1", raw, time.Hour).SetVal("OK")
	mock.ExpectGet("cache:doc:jobs:job-1").SetVal(string(raw))

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "doc:jobs:job-1", job))

	var got domain.Job
	require.NoError(t, cache.Get(ctx, "doc:jobs:job-1", &got))
	assert.Equal(t, "Backend Engineer", got.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentCache_Delete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectDel("cache:doc:profiles:u-1").SetVal(1)

	require.NoError(t, NewDocumentCache(client, 0).Delete(context.Background(), "doc:profiles:u-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// SessionStore
// ---------------------------------------------------------------------------

func TestSessionStore_GetMissing(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("session:web-1").RedisNil()

	_, err := NewSessionStore(client).Get(context.Background(), "web-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_PutAndGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewSessionStore(client)
	rec := &domain.SessionRecord{ClientID: "web-1", State: domain.SessionAuthenticated, Token: "t"}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	mock.ExpectSet("session:web-1", raw, time.Hour).SetVal("OK")
	mock.ExpectGet("session:web-1").SetVal(string(raw))

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, rec, time.Hour))
	got, err := store.Get(ctx, "web-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionAuthenticated, got.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// ApplicationGuard
// ---------------------------------------------------------------------------

func TestApplicationGuard_SecondAcquireFails(t *testing.T) {
	client, mock := redismock.NewClientMock()
	guard := NewApplicationGuard(client)

	mock.ExpectSetNX("apply:job-1:seeker-1", "1", applyLockTTL).SetVal(true)
	mock.ExpectSetNX("apply:job-1:seeker-1", "1", applyLockTTL).SetVal(false)
	mock.ExpectDel("apply:job-1:seeker-1").SetVal(1)

	ctx := context.Background()
	ok, err := guard.Acquire(ctx, "job-1", "seeker-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.Acquire(ctx, "job-1", "seeker-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, guard.Release(ctx, "job-1", "seeker-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationGuard_Error(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectSetNX("apply:job-1:seeker-1", "1", applyLockTTL).SetErr(errors.New("connection refused"))

	_, err := NewApplicationGuard(client).Acquire(context.Background(), "job-1", "seeker-1")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// AttemptLimiter
// ---------------------------------------------------------------------------

func expectAttempt(mock redismock.ClientMock, n int64) {
	mock.ExpectTxPipeline()
	mock.ExpectIncr("attempts:ada@example.com").SetVal(n)
	mock.ExpectExpireNX("attempts:ada@example.com", time.Minute).SetVal(n == 1)
	mock.ExpectTxPipelineExec()
}

func TestAttemptLimiter_WindowStartsOnFirstAttempt(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewAttemptLimiter(client, 2, time.Minute)

	expectAttempt(mock, 1)
	expectAttempt(mock, 2)
	expectAttempt(mock, 3)
	mock.ExpectDel("attempts:ada@example.com").SetVal(1)

	ctx := context.Background()
	for i, want := range []bool{true, true, false} {
		ok, err := limiter.Allow(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "attempt %d", i+1)
	}
	require.NoError(t, limiter.Reset(ctx, "ada@example.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptLimiter_ExpiryRetriedAfterFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewAttemptLimiter(client, 2, time.Minute)

	mock.ExpectTxPipeline()
	mock.ExpectIncr("attempts:ada@example.com").SetVal(1)
	mock.ExpectExpireNX("attempts:ada@example.com", time.Minute).SetErr(errors.New("connection reset"))
	// The next attempt still sets the expiry, so the counter cannot outlive
	// the window.
	mock.ExpectTxPipeline()
	mock.ExpectIncr("attempts:ada@example.com").SetVal(2)
	mock.ExpectExpireNX("attempts:ada@example.com", time.Minute).SetVal(true)
	mock.ExpectTxPipelineExec()

	ctx := context.Background()
	ok, err := limiter.Allow(ctx, "ada@example.com")
	require.Error(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptLimiter_Defaults(t *testing.T) {
	l := NewAttemptLimiter(nil, 0, 0)
	assert.EqualValues(t, maxAttempts, l.max)
	assert.Equal(t, attemptWindow, l.window)
}

// ---------------------------------------------------------------------------
// TokenDenylist
// ---------------------------------------------------------------------------

func TestTokenDenylist(t *testing.T) {
	client, mock := redismock.NewClientMock()
	denylist := NewTokenDenylist(client)

	mock.ExpectSet("revoked:jti-1", "1", time.Hour).SetVal("OK")
	mock.ExpectExists("revoked:jti-1").SetVal(1)
	mock.ExpectExists("revoked:jti-2").SetVal(0)

	ctx := context.Background()
	require.NoError(t, denylist.Revoke(ctx, "jti-1", time.Hour))
	require.NoError(t, denylist.Revoke(ctx, "jti-expired", -time.Second))

	revoked, err := denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = denylist.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

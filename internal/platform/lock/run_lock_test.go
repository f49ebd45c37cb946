package lock

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunLock_InProcess はRedis未設定時にプロセス内で排他されることを検証します。
func TestRunLock_InProcess(t *testing.T) {
	t.Parallel()

	l := NewRunLock(nil, "", 0)
	assert.Equal(t, DefaultKey, l.key)
	assert.Equal(t, DefaultTTL, l.ttl)

	release, ok, err := l.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	release(context.Background())

	release, ok, err = l.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	release(context.Background())
}

// TestRunLock_Redis はSET NXによる取得とトークン照合付きの解放を検証します。
func TestRunLock_Redis(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()
	mock.MatchExpectationsInOrder(true)

	mock.Regexp().ExpectSetNX("runs", `[0-9a-f-]{36}`, time.Minute).SetVal(true)
	mock.CustomMatch(func(expected, actual []interface{}) error {
		if len(actual) != 5 || actual[0] != "eval" || actual[3] != "runs" {
			return errors.New("unexpected release command")
		}
		if !regexp.MustCompile(`^[0-9a-f-]{36}$`).MatchString(actual[4].(string)) {
			return errors.New("release without token")
		}
		return nil
	}).ExpectEval(releaseScript, []string{"runs"}, "token").SetVal(int64(1))

	l := NewRunLock(rdb, "runs", time.Minute)
	release, ok, err := l.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	release(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLock_RedisHeld(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.Regexp().ExpectSetNX("runs", `.+`, time.Minute).SetVal(false)

	_, ok, err := NewRunLock(rdb, "runs", time.Minute).TryAcquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLock_RedisError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.Regexp().ExpectSetNX("runs", `.+`, time.Minute).SetErr(errors.New("connection refused"))

	_, ok, err := NewRunLock(rdb, "runs", time.Minute).TryAcquire(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

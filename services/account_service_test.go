package services

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tictactoe-arena/models"
)

type accountFixture struct {
	svc    *AccountService
	log    *callLog
	accs   *memAccounts
	ranks  *memRanks
	objs   *memObjects
	bucket *memBucket
}

func newAccountFixture() *accountFixture {
	log := &callLog{}
	accs := &memAccounts{log: log, accounts: map[string]*models.Account{}}
	ranks := newMemRanks()
	ranks.log = log
	objs := newMemObjects()
	objs.log = log
	bucket := &memBucket{log: log, objects: map[string]bool{}}
	return &accountFixture{
		svc:    NewAccountService(accs, NewScoreService(ranks), NewStreakService(objs), bucket),
		log:    log,
		accs:   accs,
		ranks:  ranks,
		objs:   objs,
		bucket: bucket,
	}
}

func TestUsername(t *testing.T) {
	assert.Equal(t, "jose-maria", Username("u1", "José María"))
	assert.Equal(t, "player-12345678", Username("1234567890", "!!!"))
	assert.Equal(t, "player-abc", Username("abc", ""))
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	acc, err := f.svc.EnsureAccount(ctx, "u1", "  Ada Lovelace ")
	require.NoError(t, err)
	assert.Equal(t, "ada-lovelace", acc.Username)
	assert.Equal(t, "Ada Lovelace", acc.DisplayName)

	require.NotNil(t, acc.LastSeen)
	first := *acc.LastSeen

	again, err := f.svc.EnsureAccount(ctx, "u1", "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", again.DisplayName)
	require.NotNil(t, again.LastSeen)
	assert.WithinDuration(t, time.Now(), *again.LastSeen, 5*time.Second)
	assert.False(t, again.LastSeen.Before(first))
}

func TestDeleteAccountDataOrder(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.EnsureAccount(ctx, "u1", "Ada")
	_, _ = f.svc.Scores.RecordWin(ctx, "u1")
	_, _ = f.svc.Streaks.RecordWin(ctx, "u1")
	f.bucket.objects["avatars/u1/a.png"] = true
	f.bucket.objects["avatars/u2/b.png"] = true

	require.NoError(t, f.svc.DeleteAccountData(ctx, "u1"))

	assert.Equal(t, []string{"ranking", "ranking", "streak", "avatars", "account"}, f.log.calls)
	assert.NotContains(t, f.accs.accounts, "u1")
	assert.EqualValues(t, 0, f.ranks.get(models.BoardWins, "u1"))
	assert.Equal(t, map[string]bool{"avatars/u2/b.png": true}, f.bucket.objects)
}

func TestDeleteAccountDataIsBestEffortExceptCore(t *testing.T) {
	f := newAccountFixture()
	f.ranks.fail = true
	f.objs.fail = true
	f.bucket.fail = true

	assert.NoError(t, f.svc.DeleteAccountData(context.Background(), "ghost"))
	assert.Equal(t, "account", f.log.calls[len(f.log.calls)-1])

	f.accs.failDel = true
	err := f.svc.DeleteAccountData(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrAccountDelete)
}

func TestDeleteAccountDataWithoutBucket(t *testing.T) {
	f := newAccountFixture()
	f.svc.Avatars = nil
	require.NoError(t, f.svc.DeleteAccountData(context.Background(), "u1"))
	assert.Equal(t, []string{"ranking", "ranking", "streak", "account"}, f.log.calls)
}

func TestUploadAvatar(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.EnsureAccount(ctx, "u1", "Ada")

	_, err := f.svc.UploadAvatar(ctx, "u1", &multipart.FileHeader{Filename: "evil.exe"})
	assert.ErrorIs(t, err, ErrInvalidAvatar)

	url, err := f.svc.UploadAvatar(ctx, "u1", &multipart.FileHeader{Filename: "me.PNG"})
	require.NoError(t, err)
	assert.Contains(t, url, "https://cdn.test/avatars/u1/")
	assert.Equal(t, url, *f.accs.accounts["u1"].AvatarURL)
}

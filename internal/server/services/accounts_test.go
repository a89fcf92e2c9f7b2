package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *fakeRepoManager {
	return &fakeRepoManager{a: newFakeAccounts(), r: newFakeRefresh(), d: newFakeRecords()}
}

func TestCreateAccount_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := newManager()
	s := newAccountService(t, db, rm)
	s.newID = func() string { return "acc-1" }

	sess, err := s.CreateAccount(context.Background(), "  Asha@X.com ", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "acc-1", sess.AccountID)
	assert.Equal(t, "asha@x.com", sess.Email)
	assert.NotEmpty(t, sess.AccessToken)
	assert.Contains(t, rm.r.tokens, sess.RefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())

	id, err := s.AccountIDFromToken(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", id)
}

func TestCreateAccount_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newAccountService(t, db, newManager())

	_, err := s.CreateAccount(context.Background(), "not-an-email", "secret1")
	assert.ErrorIs(t, err, common.ErrorInvalidEmail)

	_, err = s.CreateAccount(context.Background(), "a@b", "secret1")
	assert.ErrorIs(t, err, common.ErrorInvalidEmail)

	_, err = s.CreateAccount(context.Background(), "a@b.com", "12345")
	assert.ErrorIs(t, err, common.ErrorWeakPassword)
}

func TestCreateAccount_Duplicate(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := newManager()
	rm.a.add(t, "acc-1", "asha@x.com", "secret1", false)
	s := newAccountService(t, db, rm)

	_, err := s.CreateAccount(context.Background(), "asha@x.com", "another1")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreateAccount_TokenStoreFailureRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := newManager()
	rm.r.createErr = errBoom{}
	s := newAccountService(t, db, rm)

	_, err := s.CreateAccount(context.Background(), "asha@x.com", "secret1")
	assert.ErrorIs(t, err, common.ErrorInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyCredentials_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newManager()
	rm.a.add(t, "acc-1", "asha@x.com", "secret1", false)
	rm.a.add(t, "acc-2", "off@x.com", "secret1", true)
	s := newAccountService(t, db, rm)
	ctx := context.Background()

	sess, err := s.VerifyCredentials(ctx, "ASHA@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", sess.AccountID)

	_, err = s.VerifyCredentials(ctx, "asha@x.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.VerifyCredentials(ctx, "nosuch@x.com", "anything")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.VerifyCredentials(ctx, "off@x.com", "secret1")
	assert.ErrorIs(t, err, common.ErrorDisabled)

	_, err = s.VerifyCredentials(ctx, "off@x.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized, "disabled state is not revealed without the password")
}

func TestVerifyCredentials_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newManager()
	rm.a.getErr = errBoom{}
	s := newAccountService(t, db, rm)

	_, err := s.VerifyCredentials(context.Background(), "asha@x.com", "secret1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestVerifyCredentials_Throttled(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newManager()
	s := newAccountService(t, db, rm)
	s.throttle = NewThrottle(1, 2)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := s.VerifyCredentials(ctx, "asha@x.com", "x")
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	}
	_, err := s.VerifyCredentials(ctx, "Asha@X.com", "x")
	assert.ErrorIs(t, err, common.ErrorThrottled)

	_, err = s.VerifyCredentials(ctx, "other@x.com", "x")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefreshSession_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := newManager()
	rm.a.add(t, "acc-1", "asha@x.com", "secret1", false)
	rm.r.tokens["old"] = &models.RefreshToken{AccountID: "acc-1", Token: "old", Expires: time.Now().Add(time.Hour)}
	s := newAccountService(t, db, rm)

	sess, err := s.RefreshSession(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", sess.AccountID)
	assert.Equal(t, "asha@x.com", sess.Email)
	assert.NotContains(t, rm.r.tokens, "old")
	assert.Contains(t, rm.r.tokens, sess.RefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshSession_Expired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newManager()
	rm.r.tokens["old"] = &models.RefreshToken{AccountID: "acc-1", Token: "old", Expires: time.Now().Add(-time.Minute)}
	s := newAccountService(t, db, rm)

	_, err := s.RefreshSession(context.Background(), "old")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.NotContains(t, rm.r.tokens, "old")
}

func TestRefreshSession_Unknown(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newAccountService(t, db, newManager())

	_, err := s.RefreshSession(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefreshSession_FindErr(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newManager()
	rm.r.findErr = errBoom{}
	s := newAccountService(t, db, rm)

	_, err := s.RefreshSession(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error searching refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped find error, got %v", err)
	}
}

func TestRefreshSession_DisabledAccount(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newManager()
	rm.a.add(t, "acc-1", "asha@x.com", "secret1", true)
	rm.r.tokens["old"] = &models.RefreshToken{AccountID: "acc-1", Token: "old", Expires: time.Now().Add(time.Hour)}
	s := newAccountService(t, db, rm)

	_, err := s.RefreshSession(context.Background(), "old")
	assert.ErrorIs(t, err, common.ErrorDisabled)
}

func TestRefreshSession_DeleteErr(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := newManager()
	rm.a.add(t, "acc-1", "asha@x.com", "secret1", false)
	rm.r.tokens["old"] = &models.RefreshToken{AccountID: "acc-1", Token: "old", Expires: time.Now().Add(time.Hour)}
	rm.r.delErr = errBoom{}
	s := newAccountService(t, db, rm)

	_, err := s.RefreshSession(context.Background(), "old")
	if err == nil || !regexp.MustCompile(`error deleting refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
}

func TestSignOut_RevokesOnlyOwnToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newManager()
	rm.r.tokens["mine"] = &models.RefreshToken{AccountID: "acc-1", Token: "mine", Expires: time.Now().Add(time.Hour)}
	rm.r.tokens["theirs"] = &models.RefreshToken{AccountID: "acc-2", Token: "theirs", Expires: time.Now().Add(time.Hour)}
	s := newAccountService(t, db, rm)
	ctx := context.Background()

	require.NoError(t, s.SignOut(ctx, "acc-1", "mine"))
	require.NoError(t, s.SignOut(ctx, "acc-1", "theirs"))
	require.NoError(t, s.SignOut(ctx, "acc-1", "unknown"))

	assert.Equal(t, []string{"mine"}, rm.r.revoked)
	assert.Contains(t, rm.r.tokens, "theirs")

	rm.r.delErr = errBoom{}
	err := s.SignOut(ctx, "acc-1", "x")
	assert.True(t, errors.Is(err, errBoom{}))
}

func TestSetDisabled(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newManager()
	rm.a.add(t, "acc-1", "asha@x.com", "secret1", false)
	s := newAccountService(t, db, rm)

	require.NoError(t, s.SetDisabled(context.Background(), "ASHA@x.com", true))
	assert.True(t, rm.a.byEmail["asha@x.com"].Disabled)

	assert.ErrorIs(t, s.SetDisabled(context.Background(), "ghost@x.com", true), common.ErrorNotFound)
}

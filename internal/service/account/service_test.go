package account_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/auth"
	"github.com/oggyb/cinemood/internal/db"
	svcErr "github.com/oggyb/cinemood/internal/errors"
	"github.com/oggyb/cinemood/internal/service/account"
	"github.com/oggyb/cinemood/internal/testutil"
)

func setupService(t *testing.T) (*account.Service, *gorm.DB) {
	t.Helper()
	store := testutil.NewStore(t)
	return account.NewService(testutil.NewAppContext(t, store)), store.DB
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *svcErr.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Status
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	mbti := "intj"
	user, err := svc.Register(ctx, gdb, account.RegisterInput{
		Email: " Someone@Example.com", Password: "password123", Nickname: " Someone ", MBTI: &mbti,
	})
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", user.Email)
	assert.Equal(t, "Someone", user.Nickname)
	assert.Equal(t, "INTJ", *user.MBTI)
	assert.True(t, user.IsActive)
	assert.True(t, auth.VerifyPassword("password123", user.PasswordHash))

	_, err = svc.Register(ctx, gdb, account.RegisterInput{Email: "someone@example.com", Password: "password123", Nickname: "x"})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	bad := "XXXX"
	_, err = svc.Register(ctx, gdb, account.RegisterInput{Email: "b@example.com", Password: "password123", Nickname: "x", MBTI: &bad})
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	user := testutil.CreateUser(t, gdb)

	token, err := svc.Login(ctx, gdb, "TEST@example.com", testutil.TestPassword)
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)

	got, err := svc.Authenticate(ctx, gdb, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login(ctx, gdb, testutil.TestEmail, "nope-nope")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = svc.Authenticate(ctx, gdb, "garbage")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	require.NoError(t, gdb.Model(&db.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = svc.Login(ctx, gdb, testutil.TestEmail, testutil.TestPassword)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	_, err = svc.Authenticate(ctx, gdb, token.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	user := testutil.CreateUser(t, gdb)

	empty := ""
	updated, err := svc.UpdateProfile(ctx, gdb, user, account.UpdateInput{MBTI: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.MBTI, "empty mbti clears it")

	blank := "   "
	_, err = svc.UpdateProfile(ctx, gdb, user, account.UpdateInput{Nickname: &blank})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	var stored db.User
	require.NoError(t, gdb.First(&stored, user.ID).Error)
	assert.Nil(t, stored.MBTI)
	assert.Equal(t, testutil.TestNickname, stored.Nickname)
}

func TestChangePasswordAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	user := testutil.CreateUser(t, gdb)

	err := svc.ChangePassword(ctx, gdb, user, "wrong", "new-password-1")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	require.NoError(t, svc.ChangePassword(ctx, gdb, user, testutil.TestPassword, "new-password-1"))
	_, err = svc.Login(ctx, gdb, testutil.TestEmail, "new-password-1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, gdb, user.ID))
	assert.Equal(t, http.StatusNotFound, statusOf(t, svc.Delete(ctx, gdb, user.ID)))
}

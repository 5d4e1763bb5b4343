package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) AuthService {
	t.Helper()
	db := newTestDB(t)
	svc := NewAuthService(
		repository.NewUserRepo(db),
		repository.NewRoleRepo(db),
		repository.NewPrivilegeRepo(db),
		jwt.NewManager("test-secret", time.Hour),
	)
	require.NoError(t, svc.Seed(context.Background(), "admin@example.com", "admin123"))
	return svc
}

func TestSeedIsIdempotentAndAdminHasAllPrivileges(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx, "admin@example.com", "other"))

	resp, err := svc.Login(ctx, "ADMIN@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleMasterAdmin, resp.User.RoleCode)
	assert.Len(t, resp.Privileges, len(model.DefaultPrivileges))
	assert.NotEmpty(t, resp.Token)
}

func TestRegisterLoginValidate(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{Email: "staff@example.com", Password: "secret1", FullName: "Sam"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, user.RoleCode)
	assert.NotContains(t, user.Privileges, "sale:delete")

	_, err = svc.Register(ctx, &RegisterRequest{Email: "staff@example.com", Password: "secret1", FullName: "Sam"})
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))

	first, err := svc.Login(ctx, "staff@example.com", "secret1")
	require.NoError(t, err)
	validated, err := svc.ValidateToken(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, "staff@example.com", validated.User.Email)

	// a second login ends the first session
	_, err = svc.Login(ctx, "staff@example.com", "secret1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, first.Token)
	assert.ErrorIs(t, err, ErrSessionReplaced)

	_, err = svc.Login(ctx, "staff@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPassword(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	err := svc.ResetPassword(ctx, &ResetPasswordRequest{Email: "admin@example.com", OldPassword: "nope", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	before, err := svc.Login(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	require.NoError(t, svc.ResetPassword(ctx, &ResetPasswordRequest{Email: "admin@example.com", OldPassword: "admin123", NewPassword: "newpass1"}))

	_, err = svc.ValidateToken(ctx, before.Token)
	assert.ErrorIs(t, err, ErrSessionReplaced)
	_, err = svc.Login(ctx, "admin@example.com", "newpass1")
	assert.NoError(t, err)
}

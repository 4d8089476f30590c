package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/app/repositories"
	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"github.com/shashiranjanraj/kalakriti/pkg/auth"
	"github.com/shashiranjanraj/kalakriti/pkg/rbac"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(repositories.NewUserRepository(newTestDB(t)))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, "Priya", "priya@example.com", "sculptor-pass-1")
	require.NoError(t, err)
	assert.False(t, user.Admin, "self-registration must never mint an admin")
	assert.NotEmpty(t, tokens.Token)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, "sculptor-pass-1", user.Password, "password must be stored hashed")

	_, loginTokens, err := svc.Login(ctx, "priya@example.com", "sculptor-pass-1")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(loginTokens.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Empty(t, claims.Capabilities, "non-admin tokens carry no capabilities")
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Priya", "priya@example.com", "sculptor-pass-1")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Imposter", "priya@example.com", "other-pass-99")
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Priya", "priya@example.com", "sculptor-pass-1")
	require.NoError(t, err)

	_, _, wrongPass := svc.Login(ctx, "priya@example.com", "wrong")
	_, _, wrongEmail := svc.Login(ctx, "nobody@example.com", "sculptor-pass-1")

	require.Error(t, wrongPass)
	require.Error(t, wrongEmail)
	assert.Equal(t, wrongPass.Error(), wrongEmail.Error())
	assert.True(t, apperr.IsKind(wrongPass, apperr.Unauthorized))
}

func TestAdminTokensCarryCapabilities(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewUserRepository(db)
	svc := NewAuthService(users)
	ctx := context.Background()

	hash, err := auth.HashPassword("admin-pass-123")
	require.NoError(t, err)
	admin := models.User{Name: "Admin", Email: "admin@example.com", Password: hash, Admin: true}
	require.NoError(t, db.Create(&admin).Error)

	_, tokens, err := svc.Login(ctx, admin.Email, "admin-pass-123")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(tokens.Token)
	require.NoError(t, err)
	set := rbac.NewSet(claims.Capabilities)
	assert.True(t, set.Has(rbac.CapManageCatalog))
	assert.True(t, set.Has(rbac.CapDownloadAny))
	assert.True(t, set.Has(rbac.CapUploadPrivate))
	assert.True(t, set.Has(rbac.CapViewAllOrders))
}

func TestUpdateProfile(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Priya", "priya@example.com", "sculptor-pass-1")
	require.NoError(t, err)

	name := "Priya S"
	bio := "Sculptor and rigger."
	avatar := "public/avatars/priya.jpg"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{Name: &name, Bio: &bio, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Priya S", updated.Name)
	assert.Equal(t, "Sculptor and rigger.", updated.Bio)
	assert.Equal(t, "public/avatars/priya.jpg", updated.Avatar)

	// Untouched fields survive a partial update.
	bio2 := "Now with more polygons."
	updated, err = svc.UpdateProfile(ctx, user.ID, ProfileInput{Bio: &bio2})
	require.NoError(t, err)
	assert.Equal(t, "Priya S", updated.Name)
	assert.Equal(t, "public/avatars/priya.jpg", updated.Avatar)
}

func TestUpdateProfileRejectsPrivateAvatarKey(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Priya", "priya@example.com", "sculptor-pass-1")
	require.NoError(t, err)

	private := "products/secret.glb"
	_, err = svc.UpdateProfile(ctx, user.ID, ProfileInput{Avatar: &private})
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

package service

import (
	"context"
	"testing"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/access"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetAndUpdateMe(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	user, p := h.register(t, "me@x.com", models.RoleAdmin)

	me, err := h.users.GetMe(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "me@x.com", me.Email)
	assert.Equal(t, models.RoleAdmin, me.Role)
	assert.Nil(t, me.Image)

	updated, err := h.users.UpdateMe(ctx, p, UpdateUserInput{FirstName: "Olga", LastName: "Sidorova", Phone: "+79991112233"})
	require.NoError(t, err)
	assert.Equal(t, models.UpdateUserView{FirstName: "Olga", LastName: "Sidorova", Phone: "+79991112233"}, updated)

	me, err = h.users.GetMe(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Olga", me.FirstName)

	_, err = h.users.GetMe(ctx, access.Anonymous())
	assertCode(t, err, models.CodeUnauthorized, "")
	_, err = h.users.UpdateMe(ctx, access.ForUser("ghost@x.com", models.RoleUser), UpdateUserInput{})
	assertCode(t, err, models.CodeUnauthorized, "")
}

func TestUserService_SetPassword(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	_, p := h.register(t, "me@x.com", models.RoleUser)

	err := h.users.SetPassword(ctx, p, "not-my-password", "newpassword1")
	assertCode(t, err, models.CodeUnauthorized, models.MsgInvalidPassword)

	require.NoError(t, h.users.SetPassword(ctx, p, "password123", "newpassword1"))

	_, err = h.auth.Login(ctx, "me@x.com", "password123")
	assertCode(t, err, models.CodeUnauthorized, "")
	_, err = h.auth.Login(ctx, "me@x.com", "newpassword1")
	assert.NoError(t, err)
}

func TestUserService_UpdateMyImage(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	_, p := h.register(t, "me@x.com", models.RoleUser)

	require.NoError(t, h.users.UpdateMyImage(ctx, p, pngUpload(t)))
	me, err := h.users.GetMe(ctx, p)
	require.NoError(t, err)
	first := storedPath(t, me.Image)
	assert.Contains(t, first, "avatars/")
	assert.True(t, h.imageExists(first))

	require.NoError(t, h.users.UpdateMyImage(ctx, p, pngUpload(t)))
	me, err = h.users.GetMe(ctx, p)
	require.NoError(t, err)
	second := storedPath(t, me.Image)
	assert.NotEqual(t, first, second)
	assert.True(t, h.imageExists(second))
	assert.False(t, h.imageExists(first))

	err = h.users.UpdateMyImage(ctx, p, ImageUpload{ContentType: "image/gif", Content: []byte("GIF89a")})
	assertCode(t, err, models.CodeBadRequest, models.MsgUnsupportedFileType)
	assert.True(t, h.imageExists(second))
}

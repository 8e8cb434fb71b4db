package user

import (
	"context"
	"testing"
	"time"

	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
	"social-event-system/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*gorm.DB, *Service) {
	db := test.NewDB(t)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	return db, NewService(db, func() time.Time { return now })
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Email:     email,
		Password:  "Passw0rd",
		FirstName: "Ada",
		LastName:  "Lovelace",
		BirthDate: "1990-12-10",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	_, s := newService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, registerInput(" Ada@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEqual(t, "Passw0rd", u.Password)
	assert.Equal(t, jwt.RoleUser, u.RoleID)
	require.NotNil(t, u.BirthDate)
	assert.Equal(t, time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC), *u.BirthDate)

	_, err = s.Register(ctx, registerInput("ada@example.com"))
	assert.ErrorIs(t, err, response.ErrAlreadyExists)

	_, err = s.Login(ctx, "ada@example.com", "wrong-pass1")
	assert.ErrorIs(t, err, response.ErrInvalidPassword)
	_, err = s.Login(ctx, "nobody@example.com", "Passw0rd")
	assert.ErrorIs(t, err, response.ErrInvalidPassword)

	res, err := s.Login(ctx, "ADA@example.com", "Passw0rd")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	claims, ok := jwt.ParseToken(res.Token)
	require.True(t, ok)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestRegisterValidation(t *testing.T) {
	_, s := newService(t)
	ctx := context.Background()

	in := registerInput("weak@example.com")
	in.Password = "password"
	_, err := s.Register(ctx, in)
	assert.ErrorIs(t, err, response.ErrInvalidRequest)

	in = registerInput("future@example.com")
	in.BirthDate = "2030-01-01"
	_, err = s.Register(ctx, in)
	assert.ErrorIs(t, err, response.ErrInvalidRequest)

	in = registerInput("format@example.com")
	in.BirthDate = "01/02/1990"
	_, err = s.Register(ctx, in)
	assert.ErrorIs(t, err, response.ErrInvalidRequest)
}

func TestUpdateProfileAndPassword(t *testing.T) {
	db, s := newService(t)
	ctx := context.Background()
	u, err := s.Register(ctx, registerInput("grace@example.com"))
	require.NoError(t, err)

	blank := "  "
	_, err = s.UpdateProfile(ctx, u.ID, ProfileUpdate{FirstName: &blank})
	assert.ErrorIs(t, err, response.ErrInvalidRequest)

	name, avatar, clear := "Grace", "https://cdn.example.com/a.png", ""
	updated, err := s.UpdateProfile(ctx, u.ID, ProfileUpdate{FirstName: &name, AvatarURL: &avatar, BirthDate: &clear})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)
	assert.Nil(t, updated.BirthDate)

	var stored model.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, avatar, stored.AvatarURL)
	assert.Nil(t, stored.BirthDate)

	assert.ErrorIs(t, s.ChangePassword(ctx, u.ID, "bad", "NewPassw0rd"), response.ErrInvalidPassword)
	assert.ErrorIs(t, s.ChangePassword(ctx, u.ID, "Passw0rd", "short1"), response.ErrInvalidRequest)
	require.NoError(t, s.ChangePassword(ctx, u.ID, "Passw0rd", "NewPassw0rd"))
	_, err = s.Login(ctx, "grace@example.com", "NewPassw0rd")
	assert.NoError(t, err)
}

func TestProfile(t *testing.T) {
	db, s := newService(t)
	ctx := context.Background()
	a := test.CreateUser(t, db, nil)
	b := test.CreateUser(t, db, nil)
	c := test.CreateUser(t, db, nil)
	require.NoError(t, db.Create(&[]model.Follow{
		{FollowerID: b.ID, FolloweeID: a.ID},
		{FollowerID: c.ID, FolloweeID: a.ID},
		{FollowerID: a.ID, FolloweeID: c.ID},
	}).Error)

	p, err := s.Profile(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, p.ID)
	assert.EqualValues(t, 2, p.FollowerCount)
	assert.EqualValues(t, 1, p.FollowingCount)

	_, err = s.Profile(ctx, 9999)
	assert.ErrorIs(t, err, response.ErrNotFound)
}

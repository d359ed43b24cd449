package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"minitweet/internal/domain"
	"minitweet/internal/repository/jsonfile"
)

func newUserServiceForTest(t *testing.T) UserService {
	t.Helper()

	repo, err := jsonfile.NewUserRepository(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, repo.Init(context.Background()))
	return NewUserService(repo)
}

func validRegistration() RegisterInput {
	return RegisterInput{
		UserID:    uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7"),
		Email:     "a@x.com",
		FirstName: "A",
		LastName:  "B",
		Password:  "password1",
	}
}

func TestRegisterReturnsSanitizedUser(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(t)

	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	require.Equal(t, "a@x.com", user.Email)
	require.Empty(t, user.PasswordHash)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Empty(t, users[0].PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(t)

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing id", func(in *RegisterInput) { in.UserID = uuid.Nil }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"empty first name", func(in *RegisterInput) { in.FirstName = "" }},
		{"long last name", func(in *RegisterInput) { in.LastName = string(make([]byte, 51)) }},
		{"short password", func(in *RegisterInput) { in.Password = "short" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegistration()
			tc.mutate(&in)
			_, err := svc.Register(ctx, in)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRegisterNameLimitsCountRunes(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(t)

	in := validRegistration()
	in.FirstName = strings.Repeat("ö", 50)
	in.LastName = strings.Repeat("李", 50)

	user, err := svc.Register(ctx, in)
	require.NoError(t, err)
	require.Equal(t, in.FirstName, user.FirstName)
	require.Equal(t, in.LastName, user.LastName)

	in = validRegistration()
	in.UserID = uuid.MustParse("9b2b94f2-5ad2-47a1-83a4-3d041e6e1a53")
	in.Email = "other@x.com"
	in.FirstName = strings.Repeat("ö", 51)
	_, err = svc.Register(ctx, in)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterTrimsEmailBeforeUniquenessCheck(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(t)

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	// surrounding whitespace must not let a duplicate email slip past
	dup := validRegistration()
	dup.UserID = uuid.MustParse("9b2b94f2-5ad2-47a1-83a4-3d041e6e1a53")
	dup.Email = " a@x.com "
	_, err = svc.Register(ctx, dup)
	require.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(t)

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	dup := validRegistration()
	dup.UserID = uuid.MustParse("9b2b94f2-5ad2-47a1-83a4-3d041e6e1a53")
	_, err = svc.Register(ctx, dup)
	require.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterDuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(t)

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	dup := validRegistration()
	dup.Email = "other@x.com"
	_, err = svc.Register(ctx, dup)
	require.ErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(t)

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	user, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", user.Email)
	require.Empty(t, user.PasswordHash)

	_, err = svc.Login(ctx, "a@x.com", "wrongpass1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown email collapses into the same error as a bad password
	_, err = svc.Login(ctx, "unknown@x.com", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateIsWholesale(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(t)

	in := validRegistration()
	birthday, err := domain.ParseDate("1990-06-15")
	require.NoError(t, err)
	in.Birthday = &birthday

	registered, err := svc.Register(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, registered.Birthday)

	// omitting the optional birthday reverts it to its default
	updated, err := svc.Update(ctx, in.UserID, UserInput{
		Email:     "new@x.com",
		FirstName: "New",
		LastName:  "Name",
	})
	require.NoError(t, err)
	require.Equal(t, "new@x.com", updated.Email)
	require.Nil(t, updated.Birthday)

	// credentials survive a wholesale update
	logged, err := svc.Login(ctx, "new@x.com", "password1")
	require.NoError(t, err)
	require.Equal(t, in.UserID, logged.UserID)
}

func TestUpdateMissingUser(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(t)

	_, err := svc.Update(ctx, uuid.MustParse("11111111-1111-1111-1111-111111111111"), UserInput{
		Email:     "a@x.com",
		FirstName: "A",
		LastName:  "B",
	})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteThenGet(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceForTest(t)

	in := validRegistration()
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, in.UserID))
	_, err = svc.Get(ctx, in.UserID)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, svc.Delete(ctx, in.UserID), ErrUserNotFound)
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1990-06-15")
	require.NoError(t, err)
	require.Equal(t, "1990-06-15", d.String())

	_, err = ParseDate("15/06/1990")
	require.Error(t, err)
}

func TestUserBirthdaySerialization(t *testing.T) {
	birthday, err := ParseDate("1990-06-15")
	require.NoError(t, err)

	user := User{
		UserID:    uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7"),
		Email:     "a@x.com",
		FirstName: "A",
		LastName:  "B",
		Birthday:  &birthday,
	}

	data, err := json.Marshal(user)
	require.NoError(t, err)
	require.Contains(t, string(data), `"birthday":"1990-06-15"`)

	var decoded User
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.Birthday)
	require.Equal(t, "1990-06-15", decoded.Birthday.String())
}

func TestUserWithoutBirthdayOmitsField(t *testing.T) {
	user := User{
		UserID:    uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7"),
		Email:     "a@x.com",
		FirstName: "A",
		LastName:  "B",
	}

	data, err := json.Marshal(user)
	require.NoError(t, err)
	require.NotContains(t, string(data), "birthday")
}

func TestSanitizedStripsCredentials(t *testing.T) {
	user := User{
		UserID:       uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7"),
		Email:        "a@x.com",
		PasswordHash: "$2a$10$secret",
	}

	clean := user.Sanitized()
	require.Empty(t, clean.PasswordHash)
	require.Equal(t, user.UserID, clean.UserID)
	// the original is untouched
	require.NotEmpty(t, user.PasswordHash)
}

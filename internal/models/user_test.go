package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{name: "student", input: "student", want: RoleStudent},
		{name: "upper case admin", input: "ADMIN", want: RoleAdmin},
		{name: "mixed case with spaces", input: "  Counselor ", want: RoleCounselor},
		{name: "moderator", input: "moderator", want: RoleModerator},
		{name: "unknown role", input: "teacher", wantErr: true},
		{name: "empty role", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownRole)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles() {
		assert.True(t, r.Valid(), r.String())
	}
	assert.False(t, Role("Admin").Valid())
	assert.False(t, Role("user").Valid())
}

func TestUser_Identity(t *testing.T) {
	institution := "MIT"
	u := &User{
		UUID:         "uid-1",
		Email:        "a@b.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "hash",
		Role:         RoleStudent,
		Institution:  &institution,
	}

	id := u.Identity()

	assert.Equal(t, "uid-1", id.UserID)
	assert.Equal(t, "a@b.com", id.Email)
	assert.Equal(t, "Ada Lovelace", id.Name)
	assert.Equal(t, RoleStudent, id.Role)
	require.NotNil(t, id.Institution)
	assert.Equal(t, "MIT", *id.Institution)
	assert.Nil(t, id.Department)
}

func TestUser_DisplayNameWithoutLastName(t *testing.T) {
	u := &User{FirstName: "Ada"}
	assert.Equal(t, "Ada", u.DisplayName())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.Com "))
}

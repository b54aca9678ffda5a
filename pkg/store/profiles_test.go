package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	admin   = Principal("ST1ADMIN")
	wallet1 = Principal("ST1WALLET1")
	wallet2 = Principal("ST2WALLET2")
)

func newTestStore(height *uint64, opts ...Option) *Store {
	return New(func() uint64 { return *height }, admin, opts...)
}

func str(s string) *string { return &s }

func TestCreateProfile(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	id, err := s.CreateProfile(wallet1, CreateProfileParams{
		Username:    "testuser",
		DisplayName: "Test User",
		Bio:         str("This is a test bio"),
		AvatarURL:   str("https://example.com/avatar.jpg"),
	})
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	p, ok := s.GetProfile(1)
	assert.True(t, ok)
	assert.Equal(t, "testuser", p.Username)
	assert.Equal(t, "Test User", p.DisplayName)
	assert.Equal(t, wallet1, p.Owner)
	assert.False(t, p.IsVerified)
	assert.Equal(t, DefaultTheme(), p.Theme)
	assert.Equal(t, uint64(2), p.CreatedAt)
	assert.Equal(t, uint64(2), p.UpdatedAt)
}

func TestCreateProfileDuplicateUsername(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	id, err := s.CreateProfile(wallet1, CreateProfileParams{Username: "testuser", DisplayName: "Test User 1"})
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	_, err = s.CreateProfile(wallet2, CreateProfileParams{Username: "testuser", DisplayName: "Test User 2"})
	assert.ErrorIs(t, err, ErrProfileExists)
}

func TestCreateProfileSecondForSameOwner(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	id, err := s.CreateProfile(wallet1, CreateProfileParams{Username: "testuser1", DisplayName: "Test User 1"})
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	// A different username does not help: one profile per owner.
	_, err = s.CreateProfile(wallet1, CreateProfileParams{Username: "testuser2", DisplayName: "Test User 2"})
	assert.ErrorIs(t, err, ErrProfileExists)
}

func TestUpdateProfile(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	_, err := s.CreateProfile(wallet1, CreateProfileParams{Username: "testuser", DisplayName: "Test User"})
	assert.NoError(t, err)

	height = 3
	err = s.UpdateProfile(wallet1, ProfileUpdate{
		DisplayName: str("Updated Display Name"),
		Bio:         str("Updated bio"),
		AvatarURL:   str("https://example.com/new-avatar.jpg"),
	})
	assert.NoError(t, err)

	p, _ := s.GetProfileByOwner(wallet1)
	assert.Equal(t, "Updated Display Name", p.DisplayName)
	assert.Equal(t, "Updated bio", *p.Bio)
	assert.Equal(t, uint64(2), p.CreatedAt)
	assert.Equal(t, uint64(3), p.UpdatedAt)
}

func TestUpdateProfilePartial(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	_, err := s.CreateProfile(wallet1, CreateProfileParams{
		Username:    "testuser",
		DisplayName: "Test User",
		Bio:         str("original bio"),
	})
	assert.NoError(t, err)

	// Omitted fields keep their prior values.
	err = s.UpdateProfile(wallet1, ProfileUpdate{DisplayName: str("New Name")})
	assert.NoError(t, err)

	p, _ := s.GetProfileByOwner(wallet1)
	assert.Equal(t, "New Name", p.DisplayName)
	assert.Equal(t, "original bio", *p.Bio)
}

func TestUpdateProfileWithoutProfile(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	err := s.UpdateProfile(wallet1, ProfileUpdate{DisplayName: str("Nobody")})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUpdateTheme(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	_, err := s.CreateProfile(wallet1, CreateProfileParams{Username: "testuser", DisplayName: "Test User"})
	assert.NoError(t, err)

	theme := Theme{
		PrimaryColor:    "#FF0000",
		SecondaryColor:  "#00FF00",
		BackgroundColor: "#0000FF",
		TextColor:       "#FFFFFF",
		ButtonStyle:     ButtonSquare,
		Layout:          LayoutLeft,
	}
	err = s.UpdateTheme(wallet1, theme)
	assert.NoError(t, err)

	p, _ := s.GetProfileByOwner(wallet1)
	assert.Equal(t, theme, p.Theme)

	err = s.UpdateTheme(wallet2, theme)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGetProfileByUsername(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	_, ok := s.GetProfileByUsername("testuser")
	assert.False(t, ok)

	_, err := s.CreateProfile(wallet1, CreateProfileParams{
		Username:    "testuser",
		DisplayName: "Test User",
		Bio:         str("Test bio"),
	})
	assert.NoError(t, err)

	p, ok := s.GetProfileByUsername("testuser")
	assert.True(t, ok)
	assert.Equal(t, "Test User", p.DisplayName)

	// Case-sensitive lookup.
	_, ok = s.GetProfileByUsername("TestUser")
	assert.False(t, ok)
}

func TestIsUsernameAvailable(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	assert.True(t, s.IsUsernameAvailable("testuser"))

	_, err := s.CreateProfile(wallet1, CreateProfileParams{Username: "testuser", DisplayName: "Test User"})
	assert.NoError(t, err)

	assert.False(t, s.IsUsernameAvailable("testuser"))
	assert.True(t, s.IsUsernameAvailable("Testuser"))
}

func TestVerifyProfile(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	_, err := s.CreateProfile(wallet1, CreateProfileParams{Username: "testuser", DisplayName: "Test User"})
	assert.NoError(t, err)

	// Non-admin callers are rejected with the admin-op code.
	err = s.VerifyProfile(wallet2, 1)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	var storeErr *Error
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, uint(100), storeErr.Code)

	p, _ := s.GetProfile(1)
	assert.False(t, p.IsVerified)

	err = s.VerifyProfile(admin, 1)
	assert.NoError(t, err)

	p, _ = s.GetProfile(1)
	assert.True(t, p.IsVerified)

	err = s.VerifyProfile(admin, 99)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestQueriesReturnCopies(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	_, err := s.CreateProfile(wallet1, CreateProfileParams{
		Username:    "testuser",
		DisplayName: "Test User",
		Bio:         str("Web3 builder"),
	})
	assert.NoError(t, err)

	p, _ := s.GetProfile(1)
	p.DisplayName = "Mutated"
	*p.Bio = "Mutated"

	again, _ := s.GetProfile(1)
	assert.Equal(t, "Test User", again.DisplayName)
	assert.Equal(t, "Web3 builder", *again.Bio)

	byName, _ := s.GetProfileByUsername("testuser")
	*byName.Bio = "Mutated"
	byOwner, _ := s.GetProfileByOwner(wallet1)
	assert.Equal(t, "Web3 builder", *byOwner.Bio)
}

func TestErrorCodesStable(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code uint
	}{
		{"not authorized", ErrNotAuthorized, 100},
		{"profile not found", ErrProfileNotFound, 101},
		{"profile exists", ErrProfileExists, 102},
		{"not link owner", ErrNotLinkOwner, 200},
		{"link not found", ErrLinkNotFound, 201},
		{"capacity exceeded", ErrCapacityExceeded, 202},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

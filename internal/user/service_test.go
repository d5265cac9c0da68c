package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	byUsername map[string]*User
	byID       map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byUsername: make(map[string]*User),
		byID:       make(map[string]*User),
	}
}

func (r *fakeRepo) CreateUser(_ context.Context, u *User) error {
	if _, exists := r.byUsername[u.Username]; exists {
		return errors.New("username taken")
	}
	cp := *u
	r.byUsername[u.Username] = &cp
	r.byID[u.ID] = &cp
	return nil
}

func (r *fakeRepo) GetUserByUsername(_ context.Context, username string) (*User, error) {
	u, ok := r.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) GetUserByID(_ context.Context, id string) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) SearchUsers(_ context.Context, query string) ([]User, error) {
	var out []User
	for _, u := range r.byUsername {
		out = append(out, *u)
	}
	return out, nil
}

func register(t *testing.T, s *Service) *Profile {
	t.Helper()
	profile, err := s.Register(context.Background(), &RegisterRequest{
		Name:     "Alice Doe",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
		ImageURL: "https://img.example.com/alice.png",
	})
	require.NoError(t, err)
	return profile
}

func TestRegisterAssignsIDAndHashesPassword(t *testing.T) {
	repo := newFakeRepo()
	s := NewService(repo, "test-secret")

	profile := register(t, s)

	_, err := uuid.Parse(profile.ID)
	assert.NoError(t, err, "id should be a uuid")

	stored := repo.byUsername["alice"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter22", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter22")))
}

func TestLoginTokenRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	s := NewService(repo, "test-secret")
	profile := register(t, s)

	res, err := s.Login(context.Background(), &LoginRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, res.ID)
	assert.NotEmpty(t, res.AccessToken)

	userID, username, err := s.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, userID)
	assert.Equal(t, "alice", username)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newFakeRepo()
	s := NewService(repo, "test-secret")
	register(t, s)

	_, err := s.Login(context.Background(), &LoginRequest{Username: "alice", Password: "wrong"})
	assert.Error(t, err)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	repo := newFakeRepo()
	s := NewService(repo, "test-secret")
	register(t, s)

	res, err := s.Login(context.Background(), &LoginRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	other := NewService(repo, "different-secret")
	userID, _, err := other.ValidateToken(res.AccessToken)
	assert.Error(t, err)
	assert.Empty(t, userID)
}

func TestResolveReturnsPublicProjection(t *testing.T) {
	repo := newFakeRepo()
	s := NewService(repo, "test-secret")
	profile := register(t, s)

	got, err := s.Resolve(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Doe", got.Name)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "https://img.example.com/alice.png", got.ImageURL)

	_, err = s.Resolve(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

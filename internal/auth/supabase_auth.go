package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/services"
	supabase "github.com/nedpals/supabase-go"
)

// TokenVerifier turns a bearer token into the auth service's user id.
type TokenVerifier interface {
	UserID(ctx context.Context, token string) (string, error)
}

// SupabaseVerifier checks tokens against Supabase Auth.
type SupabaseVerifier struct {
	client *supabase.Client
}

func NewSupabaseVerifier(url, key string) *SupabaseVerifier {
	return &SupabaseVerifier{client: supabase.CreateClient(url, key)}
}

func (v *SupabaseVerifier) UserID(ctx context.Context, token string) (string, error) {
	user, err := v.client.Auth.User(ctx, token)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// Identity resolves the caller and their role. The role comes from the
// profiles table, never from anything the client sends.
type Identity struct {
	Verifier TokenVerifier
	Profiles services.ProfileStore
}

func NewIdentity(verifier TokenVerifier, profiles services.ProfileStore) *Identity {
	return &Identity{Verifier: verifier, Profiles: profiles}
}

func (i *Identity) Resolve(ctx context.Context, token string) (models.Actor, error) {
	if token == "" {
		return models.Actor{}, services.ErrUnauthenticated
	}
	raw, err := i.Verifier.UserID(ctx, token)
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: %v", services.ErrUnauthenticated, err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: bad user id %q", services.ErrUnauthenticated, raw)
	}

	profile, err := i.Profiles.GetProfile(ctx, id)
	if errors.Is(err, services.ErrNotFound) {
		return models.Actor{}, fmt.Errorf("%w: no profile for %s", services.ErrUnauthenticated, id)
	}
	if err != nil {
		return models.Actor{}, &services.StorageError{Op: "load profile", Err: err}
	}
	if !profile.Role.Valid() {
		return models.Actor{}, fmt.Errorf("%w: unknown role %q", services.ErrForbidden, profile.Role)
	}
	return models.Actor{ID: id, Role: profile.Role}, nil
}

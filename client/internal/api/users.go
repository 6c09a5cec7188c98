package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lokis-perfume/storefront/client/internal/transport"
	"github.com/lokis-perfume/storefront/client/internal/types"
)

// Register creates an account.
func Register(ctx context.Context, d Doer, baseURL string, req types.RegisterRequest) (*types.User, error) {
	raw, err := d.Do(ctx, baseURL, transport.Request{
		Service: serviceUsers,
		Method:  http.MethodPost,
		Path:    "/users/register",
		Body:    req,
	})
	if err != nil {
		return nil, err
	}
	return decode[types.User]("register", raw)
}

// Login exchanges credentials for a bearer token.
func Login(ctx context.Context, d Doer, baseURL string, req types.LoginRequest) (*types.LoginResponse, error) {
	raw, err := d.Do(ctx, baseURL, transport.Request{
		Service: serviceUsers,
		Method:  http.MethodPost,
		Path:    "/users/login",
		Body:    req,
	})
	if err != nil {
		return nil, err
	}
	return decode[types.LoginResponse]("login", raw)
}

// Me returns the profile of the token's owner.
func Me(ctx context.Context, d Doer, baseURL, token string) (*types.User, error) {
	raw, err := d.Do(ctx, baseURL, transport.Request{
		Service: serviceUsers,
		Path:    "/users/me",
		Token:   token,
	})
	if err != nil {
		return nil, err
	}
	return decode[types.User]("get profile", raw)
}

// GetUser fetches a user by ID. The backend only allows the owner or an
// admin to read a profile.
func GetUser(ctx context.Context, d Doer, baseURL string, userID uint, token string) (*types.User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("get user: %w", ErrMissingID)
	}
	raw, err := d.Do(ctx, baseURL, transport.Request{
		Service: serviceUsers,
		Path:    "/users/" + strconv.FormatUint(uint64(userID), 10),
		Token:   token,
	})
	if err != nil {
		return nil, err
	}
	return decode[types.User]("get user", raw)
}

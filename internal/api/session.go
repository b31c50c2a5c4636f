package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	syncerrors "github.com/alexjbarnes/folder-sync/internal/errors"
	"github.com/alexjbarnes/folder-sync/internal/models"
)

// session sends a session/account request. A response carrying a
// validation error list is returned together with ErrValidation.
func (c *Client) session(ctx context.Context, method, path string, body interface{}) (*models.SessionResponse, error) {
	var resp models.SessionResponse
	if err := c.do(ctx, method, c.baseURL+path, body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		return &resp, fmt.Errorf("%s %s: %w: %s", method, path, syncerrors.ErrValidation, strings.Join(resp.Errors, "; "))
	}

	return &resp, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req models.RegistrationRequest) (*models.SessionResponse, error) {
	resp, err := c.session(ctx, http.MethodPost, "/registration", req)
	if err != nil {
		return resp, fmt.Errorf("registering: %w", err)
	}

	return resp, nil
}

// SignIn opens a session. A token in the response is kept and sent on
// later requests.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.SessionResponse, error) {
	resp, err := c.session(ctx, http.MethodPost, "/session", models.SessionRequest{
		EmailAddress: email,
		Password:     password,
	})
	if err != nil {
		return resp, fmt.Errorf("signing in: %w", err)
	}

	if resp.Token != "" {
		c.SetToken(resp.Token)
	}

	return resp, nil
}

// SignOut closes the session and forgets the token.
func (c *Client) SignOut(ctx context.Context) error {
	if _, err := c.session(ctx, http.MethodDelete, "/session", nil); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}

	c.SetToken("")

	return nil
}

// RequestPasswordReset asks the server to mail a reset link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*models.SessionResponse, error) {
	resp, err := c.session(ctx, http.MethodPost, "/password", models.PasswordResetRequest{EmailAddress: email})
	if err != nil {
		return resp, fmt.Errorf("requesting password reset: %w", err)
	}

	return resp, nil
}

// UpdatePassword sets a new password.
func (c *Client) UpdatePassword(ctx context.Context, req models.PasswordUpdateRequest) (*models.SessionResponse, error) {
	resp, err := c.session(ctx, http.MethodPut, "/password", req)
	if err != nil {
		return resp, fmt.Errorf("updating password: %w", err)
	}

	return resp, nil
}

// UpdateAccount changes the account's name or email address.
func (c *Client) UpdateAccount(ctx context.Context, req models.AccountUpdateRequest) (*models.SessionResponse, error) {
	resp, err := c.session(ctx, http.MethodPut, "/account", req)
	if err != nil {
		return resp, fmt.Errorf("updating account: %w", err)
	}

	return resp, nil
}

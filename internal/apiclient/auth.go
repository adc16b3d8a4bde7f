package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Remote auth endpoints.
const (
	PathLogin         = "/api/auth/login"
	PathValidateToken = "/api/auth/validate-token"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. It needs no stored token
// and never fires the session-expired hook.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	token, err := c.login(ctx, email, password)
	observeAnonymous(PathLogin, Outcome(err))
	return token, err
}

func (c *Client) login(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, c.timeout, ErrTimedOut)
	defer cancel()

	status, data, err := c.roundTrip(ctx, http.MethodPost, PathLogin, "", loginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		var body struct {
			Error string `json:"error"`
		}
		msg := "Login failed"
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			msg = body.Error
		}
		return "", &RequestFailedError{Status: status, Message: msg}
	}

	var resp loginResponse
	if err := decodeInto(data, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: login response has no token", ErrMalformedResponse)
	}
	return resp.Token, nil
}

// ValidateToken asks the server whether token is still valid. Any non-2xx
// status means invalid; only transport failures are returned as errors.
func (c *Client) ValidateToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeoutCause(ctx, c.timeout, ErrTimedOut)
	defer cancel()

	status, _, err := c.roundTrip(ctx, http.MethodGet, PathValidateToken, token, nil)
	if err != nil {
		observeAnonymous(PathValidateToken, Outcome(err))
		return false, err
	}
	valid := status >= 200 && status <= 299
	if valid {
		observeAnonymous(PathValidateToken, "ok")
	} else {
		observeAnonymous(PathValidateToken, "invalid")
	}
	return valid, nil
}

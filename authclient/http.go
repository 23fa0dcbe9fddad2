package authclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/session"
)

// Backend paths used by [HTTP].
const (
	LoginPath  = "/auth/login"
	SignupPath = "/auth/signup"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type grantResponse struct {
	Token string          `json:"token"`
	User  session.Session `json:"user"`
}

// HTTP authenticates against a REST backend.
//
// It must be given its own [api.Client] without a token source: a 401 from the
// login endpoint means "wrong password", not "session expired".
type HTTP struct {
	api *api.Client
}

// NewHTTP returns an [HTTP] client using c.
func NewHTTP(c *api.Client) *HTTP {
	return &HTTP{api: c}
}

func (h *HTTP) Login(ctx context.Context, email, password string) (Grant, error) {
	resp, err := api.Post[grantResponse](ctx, h.api, LoginPath, loginRequest{Email: email, Password: password})
	if err != nil {
		return Grant{}, classify(err)
	}
	return toGrant(resp)
}

func (h *HTTP) Signup(ctx context.Context, in SignupInput) (Grant, error) {
	resp, err := api.Post[grantResponse](ctx, h.api, SignupPath, signupRequest{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
	})
	if err != nil {
		return Grant{}, classify(err)
	}
	return toGrant(resp)
}

func classify(err error) error {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusConflict, http.StatusUnprocessableEntity, http.StatusTooManyRequests:
		return Reject(apiErr.Message)
	default:
		return err
	}
}

func toGrant(resp grantResponse) (Grant, error) {
	if resp.Token == "" {
		return Grant{}, errors.New("authclient: backend returned no token")
	}
	if _, err := session.Encode(&resp.User); err != nil {
		return Grant{}, fmt.Errorf("authclient: backend returned invalid user: %w", err)
	}
	return Grant{Token: resp.Token, User: resp.User}, nil
}

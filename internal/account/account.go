// Package account wraps the commerce API's account endpoints and owns the
// one place where a successful login is committed into the session store.
package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/exclusive-store/storefront/internal/api"
	apperrors "github.com/exclusive-store/storefront/internal/errors"
	"github.com/exclusive-store/storefront/internal/session"
)

// Doer is the request surface this service needs; *api.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, path string, opts api.Options) api.Result
}

// SessionWriter commits login state; *session.Manager satisfies it.
type SessionWriter interface {
	Login(user session.User, accessToken, refreshToken string) error
}

// ServiceOptions groups dependencies for NewService.
type ServiceOptions struct {
	API      Doer
	Sessions SessionWriter
	Logger   *slog.Logger
}

// Service provides account operations.
type Service struct {
	api      Doer
	sessions SessionWriter
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:      opts.API,
		sessions: opts.Sessions,
		logger:   logger,
	}
}

// RegisterInput shapes the register call.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Register creates a new account. The caller logs in separately afterwards.
func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	if input.Email == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	if input.Password == "" {
		return apperrors.ValidationField("password", "password is required")
	}

	res := s.api.Do(ctx, "/Account/register", api.Options{Method: http.MethodPost, Body: input})
	if err := res.Failure("register"); err != nil {
		return err
	}
	if !res.Succeeded() {
		return apperrors.Validationf("register: %s", api.Message(res.Data))
	}
	return nil
}

// loginPayload is the flat login response body under the envelope.
type loginPayload struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login authenticates against the API and, on success, commits the
// returned tokens and profile into the session store.
func (s *Service) Login(ctx context.Context, email, password string) (session.User, error) {
	if email == "" {
		return session.User{}, apperrors.ValidationField("email", "email is required")
	}
	if password == "" {
		return session.User{}, apperrors.ValidationField("password", "password is required")
	}

	res := s.api.Do(ctx, "/Account/login", api.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email, "password": password},
	})
	if err := res.Failure("login"); err != nil {
		return session.User{}, err
	}
	if !res.Succeeded() {
		msg := api.Message(res.Data)
		if msg == "" {
			msg = "login failed"
		}
		return session.User{}, apperrors.Unauthorized(msg)
	}

	var payload loginPayload
	if err := api.DecodeInto(api.Object(res.Data), &payload); err != nil {
		return session.User{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode login response")
	}
	if payload.AccessToken == "" {
		return session.User{}, apperrors.Unauthorized("login failed, no token received")
	}

	user := session.User{ID: payload.ID, Email: payload.Email, Role: payload.Role}
	if err := s.sessions.Login(user, payload.AccessToken, payload.RefreshToken); err != nil {
		// Session state flipped anyway; persisting failed. Surface it.
		return user, apperrors.Wrap(err, apperrors.ErrCodeInternal, "commit session")
	}
	return user, nil
}

// NotifyLogout tells the server a session ended. The token is passed
// explicitly because local cleanup has already removed the stored one; it
// rides the caller-header path, which the client only honors when no
// stored token exists. Wired into session.Manager as its Notify hook.
func (s *Service) NotifyLogout(ctx context.Context, token string) error {
	res := s.api.Do(ctx, "/Account/logout", api.Options{
		Method:  http.MethodPost,
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
	return res.Failure("logout notify")
}

// Profile is the account profile as served by the API.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

// Profile fetches the authenticated user's profile.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	res := s.api.Do(ctx, "/Account/profile", api.Options{})
	if err := res.Failure("get profile"); err != nil {
		return Profile{}, err
	}

	var profile Profile
	if err := api.DecodeInto(api.Object(res.Data), &profile); err != nil {
		return Profile{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode profile")
	}
	return profile, nil
}

// ChangePasswordInput shapes the change-password call.
type ChangePasswordInput struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// ChangePassword changes the authenticated user's password.
func (s *Service) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	if input.NewPassword == "" {
		return apperrors.ValidationField("newPassword", "new password is required")
	}
	if input.NewPassword != input.ConfirmNewPassword {
		return apperrors.ValidationField("confirmNewPassword", "passwords do not match")
	}

	res := s.api.Do(ctx, "/Account/change-password", api.Options{Method: http.MethodPost, Body: input})
	if err := res.Failure("change password"); err != nil {
		return err
	}
	if !res.Succeeded() {
		return apperrors.Validationf("change password: %s", api.Message(res.Data))
	}
	return nil
}

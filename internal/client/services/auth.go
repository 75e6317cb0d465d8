// Package services contains application services for the todo client.
// This file defines the authentication service: register, login, logout,
// profile updates and the backend liveness probe.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/common"
	"github.com/dmitrijs2005/todoclient/internal/validate"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: validate input locally, create the account and start a session.
//   - Login: authenticate by email (when the login contains "@") or username.
//   - Logout: end the session; the backend is told only when configured to be.
//   - UpdateProfile: patch the profile on the backend and merge the reply into the session user.
//   - Ping: check backend liveness.
//   - CurrentUser/IsLoggedIn: read the session state.
//
// Password buffers are wiped once the request has been built.
type AuthService interface {
	Register(ctx context.Context, email, username string, password []byte) (*models.User, error)
	Login(ctx context.Context, login string, password []byte) (*models.User, error)
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, patch map[string]any) (*models.User, error)
	Ping(ctx context.Context) error
	CurrentUser() *models.User
	IsLoggedIn() bool
}

// SessionManager is the part of session.Manager the services rely on.
type SessionManager interface {
	Login(ctx context.Context, cr api.Credentials) (*models.User, error)
	Register(ctx context.Context, r api.Registration) (*models.User, error)
	Logout(ctx context.Context, callBackend bool)
	UpdateUser(ctx context.Context, patch any) (*models.User, error)
	User() *models.User
	IsLoggedIn() bool
}

// ProfileAPI is the part of api.Client used for profile and health calls.
type ProfileAPI interface {
	UpdateProfile(ctx context.Context, patch any) (*models.User, error)
	HealthCheck(ctx context.Context) (*api.HealthStatus, error)
}

type authService struct {
	session       SessionManager
	api           ProfileAPI
	rules         config.PasswordRules
	backendLogout bool
}

// NewAuthService constructs an AuthService over the session manager and API client.
func NewAuthService(session SessionManager, client ProfileAPI, rules config.PasswordRules, backendLogout bool) AuthService {
	return &authService{session: session, api: client, rules: rules, backendLogout: backendLogout}
}

func (a *authService) Register(ctx context.Context, email, username string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" && username == "" {
		return nil, fmt.Errorf("email or username: %w", validate.ErrRequired)
	}
	if email != "" {
		if err := validate.Email(email); err != nil {
			return nil, err
		}
	}
	if err := validate.Password(string(password), a.rules).Error(); err != nil {
		return nil, err
	}

	user, err := a.session.Register(ctx, api.Registration{Email: email, Username: username, Password: string(password)})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

func (a *authService) Login(ctx context.Context, login string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	login = strings.TrimSpace(login)
	if login == "" {
		return nil, fmt.Errorf("login: %w", validate.ErrRequired)
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("password: %w", validate.ErrRequired)
	}

	cr := api.Credentials{Password: string(password)}
	if strings.Contains(login, "@") {
		cr.Email = login
	} else {
		cr.Username = login
	}

	user, err := a.session.Login(ctx, cr)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return user, nil
}

func (a *authService) Logout(ctx context.Context) {
	a.session.Logout(ctx, a.backendLogout)
}

func (a *authService) UpdateProfile(ctx context.Context, patch map[string]any) (*models.User, error) {
	if email, ok := patch["email"].(string); ok {
		if err := validate.Email(email); err != nil {
			return nil, err
		}
	}
	updated, err := a.api.UpdateProfile(ctx, patch)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return a.session.UpdateUser(ctx, updated)
}

func (a *authService) Ping(ctx context.Context) error {
	_, err := a.api.HealthCheck(ctx)
	return err
}

func (a *authService) CurrentUser() *models.User { return a.session.User() }

func (a *authService) IsLoggedIn() bool { return a.session.IsLoggedIn() }

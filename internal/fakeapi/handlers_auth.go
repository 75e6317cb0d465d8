package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "healthy"})
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Malformed request body")
	}

	problems := map[string]string{}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" && req.Username == "" {
		problems["email"] = "field required"
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			problems["email"] = "value is not a valid email address"
		}
	}
	if len(req.Password) < minPasswordLength {
		problems["password"] = "ensure this value has at least 8 characters"
	}
	if len(problems) > 0 {
		return validationFailed(c, problems)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return detail(c, http.StatusInternalServerError, "Could not hash password")
	}

	now := s.now()
	user, err := s.store.createUser(userRecord{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, ErrDuplicate) {
		return detail(c, http.StatusBadRequest, "User already registered")
	}
	if err != nil {
		return detail(c, http.StatusInternalServerError, err.Error())
	}

	return s.issueToken(c, http.StatusCreated, user)
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Malformed request body")
	}

	login := req.Email
	if login == "" {
		login = req.Username
	}
	if login == "" || req.Password == "" {
		return validationFailed(c, map[string]string{"password": "field required", "username": "field required"})
	}

	user, err := s.store.findUser(login)
	if err != nil {
		return detail(c, http.StatusUnauthorized, "Invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		return detail(c, http.StatusUnauthorized, "Invalid username or password")
	}
	if !user.IsActive {
		return detail(c, http.StatusForbidden, "Inactive user")
	}

	return s.issueToken(c, http.StatusOK, user)
}

func (s *Server) issueToken(c echo.Context, status int, user userRecord) error {
	token, err := GenerateToken(user.ID, []byte(s.cfg.SecretKey), s.now(), s.cfg.TokenTTL)
	if err != nil {
		return detail(c, http.StatusInternalServerError, "Could not issue token")
	}
	return c.JSON(status, echo.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         renderUser(user),
	})
}

func (s *Server) refresh(c echo.Context) error {
	userID := c.Get(ctxUserID).(string)
	token, err := GenerateToken(userID, []byte(s.cfg.SecretKey), s.now(), s.cfg.TokenTTL)
	if err != nil {
		return detail(c, http.StatusInternalServerError, "Could not issue token")
	}
	s.revoke(c.Get(ctxToken).(string))
	return c.JSON(http.StatusOK, echo.Map{"access_token": token, "token_type": "bearer"})
}

func (s *Server) logout(c echo.Context) error {
	s.revoke(c.Get(ctxToken).(string))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getProfile(c echo.Context) error {
	user, err := s.store.getUser(c.Get(ctxUserID).(string))
	if err != nil {
		return detail(c, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, renderUser(user))
}

// reservedProfileFields cannot be changed through the profile endpoint.
var reservedProfileFields = map[string]bool{
	"id": true, "is_active": true, "created_at": true, "updated_at": true, "password": true,
}

func (s *Server) updateProfile(c echo.Context) error {
	var patch map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&patch); err != nil {
		return detail(c, http.StatusBadRequest, "Malformed request body")
	}

	if v, ok := patch["email"]; ok {
		email, _ := v.(string)
		if _, err := mail.ParseAddress(email); err != nil {
			return validationFailed(c, map[string]string{"email": "value is not a valid email address"})
		}
	}

	user, err := s.store.updateUser(c.Get(ctxUserID).(string), func(u *userRecord) error {
		for k, v := range patch {
			switch {
			case reservedProfileFields[k]:
			case k == "email":
				u.Email, _ = v.(string)
			case k == "username":
				u.Username, _ = v.(string)
			default:
				u.Profile[k] = v
			}
		}
		u.UpdatedAt = s.now()
		return nil
	})
	switch {
	case errors.Is(err, ErrDuplicate):
		return detail(c, http.StatusBadRequest, "Email or username already taken")
	case err != nil:
		return detail(c, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, renderUser(user))
}

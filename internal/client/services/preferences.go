package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
)

var (
	ErrUnknownTheme = errors.New("theme must be light or dark")
	ErrNotSaved     = errors.New("preference could not be saved")
)

// Preferences are client-side settings kept under one storage key.
type Preferences struct {
	DefaultPriority models.Priority `json:"default_priority,omitempty"`
	HideCompleted   bool            `json:"hide_completed,omitempty"`
}

// PreferenceStore is the part of storage.Store used for preferences.
type PreferenceStore interface {
	Lookup(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any) bool
}

// PreferencesService reads and writes local settings.
//
// Contract:
//   - Theme returns the saved theme, or light when nothing valid is saved.
//   - SetTheme accepts only light or dark; ToggleTheme flips and saves.
//   - Storage failures are reported as ErrNotSaved; reads never fail.
type PreferencesService interface {
	Theme(ctx context.Context) string
	SetTheme(ctx context.Context, theme string) error
	ToggleTheme(ctx context.Context) (string, error)
	Preferences(ctx context.Context) Preferences
	SavePreferences(ctx context.Context, p Preferences) error
}

type preferencesService struct {
	store PreferenceStore
}

func NewPreferencesService(store PreferenceStore) PreferencesService {
	return &preferencesService{store: store}
}

func (s *preferencesService) Theme(ctx context.Context) string {
	var theme string
	if !s.store.Lookup(ctx, config.StorageKeyTheme, &theme) {
		return config.DefaultTheme
	}
	if theme != config.ThemeLight && theme != config.ThemeDark {
		return config.DefaultTheme
	}
	return theme
}

func (s *preferencesService) SetTheme(ctx context.Context, theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != config.ThemeLight && theme != config.ThemeDark {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}
	if !s.store.Set(ctx, config.StorageKeyTheme, theme) {
		return ErrNotSaved
	}
	return nil
}

func (s *preferencesService) ToggleTheme(ctx context.Context) (string, error) {
	next := config.ThemeDark
	if s.Theme(ctx) == config.ThemeDark {
		next = config.ThemeLight
	}
	return next, s.SetTheme(ctx, next)
}

func (s *preferencesService) Preferences(ctx context.Context) Preferences {
	var p Preferences
	if !s.store.Lookup(ctx, config.StorageKeyPreferences, &p) {
		return Preferences{DefaultPriority: models.PriorityMedium}
	}
	if _, err := models.ParsePriority(string(p.DefaultPriority)); err != nil || p.DefaultPriority == "" {
		p.DefaultPriority = models.PriorityMedium
	}
	return p
}

func (s *preferencesService) SavePreferences(ctx context.Context, p Preferences) error {
	prio, err := models.ParsePriority(string(p.DefaultPriority))
	if err != nil {
		return err
	}
	p.DefaultPriority = prio
	if !s.store.Set(ctx, config.StorageKeyPreferences, p) {
		return ErrNotSaved
	}
	return nil
}

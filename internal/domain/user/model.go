package user

import (
	"errors"
	"time"
)

var ErrAlreadyExists = errors.New("user already exists")

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageUrdu    Language = "ur"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type User struct {
	ID           string
	Name         string
	EmailOrPhone string
	JoinedAt     time.Time
}

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID string
	Email  string
}

type Settings struct {
	UserID         string
	Language       Language
	Theme          Theme
	Notifications  bool
	EmailReminders bool
	UpdatedAt      time.Time
}

func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:         userID,
		Language:       LanguageEnglish,
		Theme:          ThemeLight,
		Notifications:  true,
		EmailReminders: false,
	}
}

func IsValidLanguage(v Language) bool {
	return v == LanguageEnglish || v == LanguageUrdu
}

func IsValidTheme(v Theme) bool {
	return v == ThemeLight || v == ThemeDark
}

package postgres

import (
	"time"

	"github.com/riskibarqy/komiti/internal/domain/user"
)

type userTableModel struct {
	ID           int64     `db:"id"`
	PublicID     string    `db:"public_id"`
	Name         string    `db:"name"`
	EmailOrPhone string    `db:"email_or_phone"`
	JoinedAt     time.Time `db:"joined_at"`
}

type userInsertModel struct {
	PublicID     string    `db:"public_id"`
	Name         string    `db:"name"`
	EmailOrPhone string    `db:"email_or_phone"`
	JoinedAt     time.Time `db:"joined_at"`
}

type userSettingsTableModel struct {
	UserID         string    `db:"user_id"`
	Language       string    `db:"language"`
	Theme          string    `db:"theme"`
	Notifications  bool      `db:"notifications"`
	EmailReminders bool      `db:"email_reminders"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:           row.PublicID,
		Name:         row.Name,
		EmailOrPhone: row.EmailOrPhone,
		JoinedAt:     row.JoinedAt,
	}
}

func settingsFromRow(row userSettingsTableModel) user.Settings {
	return user.Settings{
		UserID:         row.UserID,
		Language:       user.Language(row.Language),
		Theme:          user.Theme(row.Theme),
		Notifications:  row.Notifications,
		EmailReminders: row.EmailReminders,
		UpdatedAt:      row.UpdatedAt,
	}
}

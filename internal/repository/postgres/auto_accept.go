package postgres

import (
	"database/sql"

	"contestbot/internal/domain"
)

// AutoAcceptRepo implements repository.AutoAcceptRepository
type AutoAcceptRepo struct {
	db *sql.DB
}

// NewAutoAcceptRepo creates a new auto-accept settings repository
func NewAutoAcceptRepo(db *sql.DB) *AutoAcceptRepo {
	return &AutoAcceptRepo{db: db}
}

// Save creates or replaces the settings of a channel
func (r *AutoAcceptRepo) Save(settings domain.AutoAcceptSettings) error {
	query := `
		INSERT INTO auto_accept_settings (channel_id, start_message, created_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id)
		DO UPDATE SET start_message = EXCLUDED.start_message, created_by = EXCLUDED.created_by
	`
	_, err := r.db.Exec(query, settings.ChannelID, settings.StartMessage, settings.CreatedBy)
	return err
}

// GetByChannel returns settings for a channel, or nil if none are configured
func (r *AutoAcceptRepo) GetByChannel(channelID string) (*domain.AutoAcceptSettings, error) {
	var s domain.AutoAcceptSettings
	query := `
		SELECT channel_id, start_message, created_by, created_at
		FROM auto_accept_settings
		WHERE channel_id = $1
	`
	err := r.db.QueryRow(query, channelID).Scan(&s.ChannelID, &s.StartMessage, &s.CreatedBy, &s.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

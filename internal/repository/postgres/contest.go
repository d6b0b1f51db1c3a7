package postgres

import (
	"database/sql"
	"fmt"

	"contestbot/internal/domain"
)

// ContestRepo implements repository.ContestRepository
type ContestRepo struct {
	db *sql.DB
}

// NewContestRepo creates a new contest repository
func NewContestRepo(db *sql.DB) *ContestRepo {
	return &ContestRepo{db: db}
}

// Create inserts a new active contest with zero participants and returns its id
func (r *ContestRepo) Create(draft domain.ContestDraft) (int64, error) {
	query := `
		INSERT INTO contests (name, button_text, type, channel_id, show_count, post_link)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRow(query,
		draft.Name, draft.ButtonText, string(draft.Type), draft.ChannelID, draft.ShowCount, draft.PostLink,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns a contest by id, archived ones included
func (r *ContestRepo) Get(id int64) (*domain.Contest, error) {
	var c domain.Contest
	var contestType string
	query := `
		SELECT id, name, button_text, type, channel_id, show_count, active, participant_count, post_link, created_at
		FROM contests
		WHERE id = $1
	`
	err := r.db.QueryRow(query, id).Scan(
		&c.ID, &c.Name, &c.ButtonText, &contestType, &c.ChannelID,
		&c.ShowCount, &c.Active, &c.ParticipantCount, &c.PostLink, &c.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrContestNotFound
	}
	if err != nil {
		return nil, err
	}

	c.Type = domain.ContestType(contestType)
	return &c, nil
}

// ListActive returns active contests ordered by id
func (r *ContestRepo) ListActive() ([]domain.ContestSummary, error) {
	query := `
		SELECT id, name
		FROM contests
		WHERE active = TRUE
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contests := []domain.ContestSummary{}
	for rows.Next() {
		var s domain.ContestSummary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		contests = append(contests, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contests, nil
}

// UpdateFields changes name and/or button text, leaving nil fields untouched
func (r *ContestRepo) UpdateFields(id int64, update domain.ContestUpdate) error {
	query := `
		UPDATE contests
		SET name = COALESCE($2, name),
			button_text = COALESCE($3, button_text)
		WHERE id = $1
	`
	res, err := r.db.Exec(query, id, nullString(update.Name), nullString(update.ButtonText))
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// Archive marks a contest inactive; archiving twice is not an error
func (r *ContestRepo) Archive(id int64) error {
	query := `
		UPDATE contests
		SET active = FALSE
		WHERE id = $1
	`
	res, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// HasParticipant checks whether the user was already counted for the contest
func (r *ContestRepo) HasParticipant(contestID, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM contest_participants WHERE contest_id = $1 AND user_id = $2)`
	err := r.db.QueryRow(query, contestID, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// AddParticipant records the user and increments the counter in one transaction.
// Returns false when the user was already recorded; the counter is untouched then.
func (r *ContestRepo) AddParticipant(contestID, userID int64) (bool, int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO contest_participants (contest_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (contest_id, user_id) DO NOTHING
	`
	res, err := tx.Exec(query, contestID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("insert participant: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}
	if inserted == 0 {
		return false, 0, nil
	}

	count, err := incrementParticipants(tx, contestID)
	if err != nil {
		return false, 0, err
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit participant: %w", err)
	}
	return true, count, nil
}

type queryRower interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

// incrementParticipants bumps the counter and returns the new value.
// Callers run it inside the transaction that records the participant.
func incrementParticipants(q queryRower, id int64) (int, error) {
	query := `
		UPDATE contests
		SET participant_count = participant_count + 1
		WHERE id = $1
		RETURNING participant_count
	`
	var count int
	err := q.QueryRow(query, id).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, domain.ErrContestNotFound
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrContestNotFound
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/chorewheel/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var pinHash string
	err := scanner.Scan(
		&u.ID, &u.Email, &u.Name, &pinHash,
		&u.TotalPoints, &u.WeeklyPoints, &u.MonthlyPoints,
		&u.WeekStart, &u.MonthStart, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.HasPIN = pinHash != ""
	u.WeekStart = u.WeekStart.UTC()
	u.MonthStart = u.MonthStart.UTC()
	return &u, nil
}

const userCols = `id, email, name, pin_hash, total_points, weekly_points, monthly_points, week_start, month_start, created_at, updated_at`

func (s *UserStore) Create(ctx context.Context, email, name string) (*model.User, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, email, name, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *UserStore) Get(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u.Badges, err = s.badges(ctx, id); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if u.Badges, err = s.badges(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Update persists the user's profile and point counters. Badges are managed
// through AddBadges only.
func (s *UserStore) Update(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = ?, name = ?, total_points = ?, weekly_points = ?, monthly_points = ?, week_start = ?, month_start = ?, updated_at = ? WHERE id = ?`,
		u.Email, u.Name, u.TotalPoints, u.WeeklyPoints, u.MonthlyPoints,
		u.WeekStart.UTC(), u.MonthStart.UTC(), time.Now().UTC(), u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// AddBadges appends badge keys to the user's earned set. Re-adding an earned
// badge is a no-op, so retries cannot duplicate awards.
func (s *UserStore) AddBadges(ctx context.Context, userID string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_badges (user_id, badge_key) VALUES (?, ?)`,
			userID, key,
		); err != nil {
			return fmt.Errorf("insert badge: %w", err)
		}
	}
	return tx.Commit()
}

func (s *UserStore) badges(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT badge_key FROM user_badges WHERE user_id = ? ORDER BY earned_at ASC, badge_key ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *UserStore) SetPIN(ctx context.Context, userID, pinHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET pin_hash = ?, updated_at = ? WHERE id = ?`,
		pinHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

// PINHash returns the stored bcrypt hash, empty when no PIN is set.
func (s *UserStore) PINHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT pin_hash FROM users WHERE id = ?`, userID).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pin hash: %w", err)
	}
	return hash, nil
}

// ListByHousehold returns the household's members with their badges attached,
// ordered for leaderboard display.
func (s *UserStore) ListByHousehold(ctx context.Context, householdID string) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.name, u.pin_hash, u.total_points, u.weekly_points, u.monthly_points, u.week_start, u.month_start, u.created_at, u.updated_at
		 FROM users u
		 JOIN household_members m ON m.user_id = u.id
		 WHERE m.household_id = ?
		 ORDER BY u.total_points DESC, u.name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list household users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Badges, err = s.badges(ctx, users[i].ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}

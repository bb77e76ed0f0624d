package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/chorewheel/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var assignedTo, completedBy sql.NullString
	var dueDate, completedAt, nextOccurrence sql.NullTime
	var completed int

	err := scanner.Scan(
		&c.ID, &c.HouseholdID, &c.Title, &c.Description, &assignedTo, &c.CreatedBy,
		&dueDate, &c.PointValue, &completed, &completedAt, &completedBy,
		&c.RecurrenceRule, &nextOccurrence, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.IsCompleted = completed != 0
	if assignedTo.Valid {
		c.AssignedTo = &assignedTo.String
	}
	if completedBy.Valid {
		c.CompletedBy = &completedBy.String
	}
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		c.DueDate = &t
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		c.CompletedAt = &t
	}
	if nextOccurrence.Valid {
		t := nextOccurrence.Time.UTC()
		c.NextOccurrence = &t
	}
	return &c, nil
}

const choreCols = `id, household_id, title, description, assigned_to, created_by, due_date, point_value, is_completed, completed_at, completed_by, recurrence_rule, next_occurrence, created_at, updated_at`

func (s *ChoreStore) Create(ctx context.Context, c *model.Chore) (*model.Chore, error) {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chores (id, household_id, title, description, assigned_to, created_by, due_date, point_value, is_completed, completed_at, completed_by, recurrence_rule, next_occurrence, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, c.HouseholdID, c.Title, c.Description, nullStr(c.AssignedTo), c.CreatedBy,
		nullTime(c.DueDate), c.PointValue, boolInt(c.IsCompleted), nullTime(c.CompletedAt),
		nullStr(c.CompletedBy), c.RecurrenceRule, nullTime(c.NextOccurrence), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *ChoreStore) Get(ctx context.Context, id string) (*model.Chore, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

func (s *ChoreStore) Update(ctx context.Context, c *model.Chore) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chores SET title = ?, description = ?, assigned_to = ?, due_date = ?, point_value = ?, is_completed = ?, completed_at = ?, completed_by = ?, recurrence_rule = ?, next_occurrence = ?, updated_at = ? WHERE id = ?`,
		c.Title, c.Description, nullStr(c.AssignedTo), nullTime(c.DueDate), c.PointValue,
		boolInt(c.IsCompleted), nullTime(c.CompletedAt), nullStr(c.CompletedBy),
		c.RecurrenceRule, nullTime(c.NextOccurrence), time.Now().UTC(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update chore: %w", err)
	}
	return nil
}

func (s *ChoreStore) Delete(ctx context.Context, id, householdID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chores WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

// ChoreFilter narrows ListByHousehold. Nil fields match everything.
type ChoreFilter struct {
	AssignedTo *string
	Completed  *bool
	DueBefore  *time.Time
}

func (s *ChoreStore) ListByHousehold(ctx context.Context, householdID string, f ChoreFilter) ([]model.Chore, error) {
	query := `SELECT ` + choreCols + ` FROM chores WHERE household_id = ?`
	args := []any{householdID}

	var conds []string
	if f.AssignedTo != nil {
		conds = append(conds, `assigned_to = ?`)
		args = append(args, *f.AssignedTo)
	}
	if f.Completed != nil {
		conds = append(conds, `is_completed = ?`)
		args = append(args, boolInt(*f.Completed))
	}
	if f.DueBefore != nil {
		conds = append(conds, `due_date IS NOT NULL AND due_date < ?`)
		args = append(args, f.DueBefore.UTC())
	}
	if len(conds) > 0 {
		query += ` AND ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY due_date IS NULL, due_date ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

// CountCompletedBy counts every chore the user has ever completed, across all
// households. Badge thresholds are lifetime counters.
func (s *ChoreStore) CountCompletedBy(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chores WHERE is_completed = 1 AND completed_by = ?`,
		userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed chores: %w", err)
	}
	return n, nil
}

// ListDueBetween returns pending chores whose due date falls in [start, end),
// used by the reminder scheduler.
func (s *ChoreStore) ListDueBetween(ctx context.Context, start, end time.Time) ([]model.Chore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+choreCols+` FROM chores WHERE is_completed = 0 AND due_date IS NOT NULL AND due_date >= ? AND due_date < ? ORDER BY due_date ASC`,
		start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list due chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

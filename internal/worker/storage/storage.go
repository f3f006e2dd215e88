package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Storage applies view events to the jobs table
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// IncrementViews adds one view to every listed job in a single statement and
// returns how many rows were updated. Ids of deleted jobs are skipped.
func (s *Storage) IncrementViews(ctx context.Context, jobIDs []string) (int64, error) {
	if len(jobIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE jobs
		SET views = views + 1
		WHERE id = ANY($1::uuid[])
	`

	result, err := s.db.ExecContext(ctx, query, pq.Array(jobIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to increment job views: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected < int64(len(jobIDs)) {
		s.logger.Debug("View increment skipped missing jobs",
			slog.Int("requested", len(jobIDs)),
			slog.Int64("updated", rowsAffected),
		)
	}

	return rowsAffected, nil
}

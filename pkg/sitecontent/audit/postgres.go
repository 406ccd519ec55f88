package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository persists audit entries with pgx.
//
// Expected schema:
//
//	CREATE TABLE content_audit (
//	    id uuid PRIMARY KEY,
//	    section text NOT NULL,
//	    season int,
//	    editor text NOT NULL DEFAULT '',
//	    version bigint NOT NULL,
//	    backup_created boolean NOT NULL DEFAULT false,
//	    created_at timestamptz NOT NULL
//	);
//	CREATE INDEX content_audit_section_idx ON content_audit (section, created_at DESC);
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresWithPool creates a repository on an existing connection pool.
func NewPostgresWithPool(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) RecordWrite(ctx context.Context, entry *Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO content_audit (id, section, season, editor, version, backup_created, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Section, entry.Season, entry.Editor, entry.Version, entry.BackupCreated, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListBySection(ctx context.Context, section string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, section, season, editor, version, backup_created, created_at
		FROM content_audit
		WHERE section = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		section, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Section, &e.Season, &e.Editor, &e.Version, &e.BackupCreated, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

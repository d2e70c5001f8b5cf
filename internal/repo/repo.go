package repo

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Repository interface {
	MigrateUp(ctx context.Context) error
	MigrateDown(ctx context.Context) error
	Ping(ctx context.Context) error
	CreateLink(ctx context.Context, link LinkEntity) (LinkEntity, error)
	GetLink(ctx context.Context, id string) (*LinkEntity, error)
	UpdateLink(ctx context.Context, link LinkEntity) (LinkEntity, error)
	CreateStatistic(ctx context.Context, stat StatisticEntity) error
	GetLinkStatistics(ctx context.Context, linkID string) ([]CounterStatistic, error)
}

type repository struct {
	db  *sql.DB
	log *zerolog.Logger
}

func NewRepository(db *sql.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}

	return &repository{
		db:  db,
		log: log,
	}, nil
}

func (r *repository) MigrateUp(ctx context.Context) error {
	files, err := fs.Glob(migrations, "migrations/*.up.sql")
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		if err := r.execFile(ctx, file); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Applied %d migrations", len(files))
	return nil
}

func (r *repository) MigrateDown(ctx context.Context) error {
	files, err := fs.Glob(migrations, "migrations/*.down.sql")
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	for _, file := range files {
		if err := r.execFile(ctx, file); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Rolled back %d migrations", len(files))
	return nil
}

func (r *repository) execFile(ctx context.Context, file string) error {
	sqlBytes, err := migrations.ReadFile(file)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, string(sqlBytes))
	return err
}

func (r *repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (r *repository) CreateLink(ctx context.Context, link LinkEntity) (LinkEntity, error) {
	query := `
		INSERT INTO links (id, target_url)
		VALUES ($1, $2)
		RETURNING id, target_url
	`

	var created LinkEntity
	err := r.db.QueryRowContext(ctx, query, link.ID, link.TargetURL).
		Scan(&created.ID, &created.TargetURL)
	if err != nil {
		return LinkEntity{}, fmt.Errorf("failed to insert link: %w", err)
	}

	return created, nil
}

// GetLink returns nil without error when no link has the given id.
func (r *repository) GetLink(ctx context.Context, id string) (*LinkEntity, error) {
	query := `SELECT id, target_url FROM links WHERE id = $1`

	var link LinkEntity
	err := r.db.QueryRowContext(ctx, query, id).Scan(&link.ID, &link.TargetURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query link by id: %w", err)
	}

	return &link, nil
}

// UpdateLink fails with a wrapped sql.ErrNoRows when the id does not exist.
func (r *repository) UpdateLink(ctx context.Context, link LinkEntity) (LinkEntity, error) {
	query := `
		UPDATE links SET target_url = $1
		WHERE id = $2
		RETURNING id, target_url
	`

	var updated LinkEntity
	err := r.db.QueryRowContext(ctx, query, link.TargetURL, link.ID).
		Scan(&updated.ID, &updated.TargetURL)
	if err != nil {
		return LinkEntity{}, fmt.Errorf("failed to update link: %w", err)
	}

	return updated, nil
}

func (r *repository) CreateStatistic(ctx context.Context, stat StatisticEntity) error {
	query := `
		INSERT INTO link_statistics (link_id, referer, user_agent)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, stat.LinkID, stat.Referer, stat.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to insert link statistic: %w", err)
	}

	return nil
}

func (r *repository) GetLinkStatistics(ctx context.Context, linkID string) ([]CounterStatistic, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COUNT(*) AS amount, referer, user_agent
		FROM link_statistics
		WHERE link_id = $1
		GROUP BY link_id, referer, user_agent
		ORDER BY amount DESC
	`, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to query link statistics: %w", err)
	}
	defer rows.Close()

	stats := make([]CounterStatistic, 0)
	for rows.Next() {
		var s CounterStatistic
		if err := rows.Scan(&s.Amount, &s.Referer, &s.UserAgent); err != nil {
			return nil, fmt.Errorf("failed to scan link statistic: %w", err)
		}
		stats = append(stats, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return stats, nil
}

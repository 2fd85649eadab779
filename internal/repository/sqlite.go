package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/miroads/go-road-risk/internal/geo"
	"github.com/miroads/go-road-risk/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS hazards (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			type TEXT NOT NULL,
			description TEXT,
			impact TEXT,
			start_date DATETIME,
			end_date DATETIME,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_hazards_type ON hazards(type);
		CREATE INDEX IF NOT EXISTS idx_hazards_created_at ON hazards(created_at);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Add(ctx context.Context, h *models.Hazard) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hazards (id, source, type, description, impact, start_date, end_date, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Source, string(h.Type), h.Description, h.Impact,
		nullableTime(h.StartDate), nullableTime(h.EndDate),
		h.Latitude, h.Longitude, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting hazard: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.Hazard, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, type, description, impact, start_date, end_date, latitude, longitude, created_at
		FROM hazards WHERE id = ?`, id)

	h, err := scanHazard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning hazard: %w", err)
	}
	return h, nil
}

func (s *SQLiteDB) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM hazards WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking hazard existence: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteDB) ListHazards(ctx context.Context, opts Filter) ([]models.Hazard, error) {
	query := `
		SELECT id, source, type, description, impact, start_date, end_date, latitude, longitude, created_at
		FROM hazards`
	var conds []string
	var args []any

	if len(opts.Types) > 0 {
		placeholders := make([]string, len(opts.Types))
		for i, t := range opts.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		conds = append(conds, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ", ")))
	}
	if opts.Since != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *opts.Since)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY created_at DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing hazards: %w", err)
	}
	defer rows.Close()

	var hazards []models.Hazard
	for rows.Next() {
		h, err := scanHazard(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning hazard row: %w", err)
		}
		hazards = append(hazards, *h)
	}
	return hazards, rows.Err()
}

func (s *SQLiteDB) CountRecentNear(ctx context.Context, types []models.HazardType, since time.Time, bounds geo.Bounds) (int, error) {
	if len(types) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(types))
	args := make([]any, 0, len(types)+5)
	for i, t := range types {
		placeholders[i] = "?"
		args = append(args, string(t))
	}
	args = append(args, since, bounds.MinLat, bounds.MaxLat, bounds.MinLng, bounds.MaxLng)

	query := fmt.Sprintf(`
		SELECT COUNT(1) FROM hazards
		WHERE type IN (%s)
		  AND created_at >= ?
		  AND latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?`, strings.Join(placeholders, ", "))

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting recent hazards: %w", err)
	}
	return n, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHazard(row scanner) (*models.Hazard, error) {
	var (
		h     models.Hazard
		typ   string
		start sql.NullTime
		end   sql.NullTime
	)
	err := row.Scan(&h.ID, &h.Source, &typ, &h.Description, &h.Impact, &start, &end, &h.Latitude, &h.Longitude, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	h.Type = models.HazardType(typ)
	if start.Valid {
		h.StartDate = &start.Time
	}
	if end.Valid {
		h.EndDate = &end.Time
	}
	return &h, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

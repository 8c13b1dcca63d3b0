package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"whitelister/database"
	"whitelister/models"

	"github.com/jackc/pgx/v5"
)

// PostgresStore persists the settings record as a single JSONB row.
// The whitelist_settings table is constrained to one row; Save replaces the
// whole record, matching the file backend's semantics.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a Postgres-backed settings store.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load reads the durable record. An empty table is not an error and returns
// (nil, nil); a row that fails to decode is.
func (s *PostgresStore) Load(ctx context.Context) (*models.Settings, error) {
	query := `
		SELECT record
		FROM whitelist_settings
		WHERE id = 1
	`

	var data []byte
	err := s.db.QueryRow(ctx, query).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load whitelist settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode whitelist settings record: %w", err)
	}
	if settings.SubmittedWallets == nil {
		settings.SubmittedWallets = make(map[int64][]string)
	}

	return &settings, nil
}

// Save upserts the full record, replacing prior content atomically.
func (s *PostgresStore) Save(ctx context.Context, settings *models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode whitelist settings: %w", err)
	}

	query := `
		INSERT INTO whitelist_settings (id, record)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE
		SET record = EXCLUDED.record, updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, data); err != nil {
		return fmt.Errorf("failed to save whitelist settings: %w", err)
	}

	return nil
}

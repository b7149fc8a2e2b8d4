package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Install is one journal row.
type Install struct {
	Framework   string
	Category    string
	Version     string
	InstallPath string
	Checksum    string
	InstalledAt time.Time
}

// Journal records framework installs.
type Journal struct {
	db *sql.DB
}

// NewJournal creates a Journal on an open database.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Record upserts an install row. Reinstalling a framework replaces its row.
func (j *Journal) Record(ctx context.Context, in Install) error {
	if in.Framework == "" {
		return fmt.Errorf("framework is empty")
	}
	if in.InstallPath == "" {
		return fmt.Errorf("install path is empty")
	}

	installedAt := in.InstalledAt
	if installedAt.IsZero() {
		installedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx, `
INSERT INTO installs(framework, category, version, install_path, checksum, installed_at)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(framework) DO UPDATE SET
  category = excluded.category,
  version = excluded.version,
  install_path = excluded.install_path,
  checksum = excluded.checksum,
  installed_at = excluded.installed_at;
`, in.Framework, in.Category, in.Version, in.InstallPath, in.Checksum, installedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record install: %w", err)
	}
	return nil
}

// Remove deletes a framework's journal row. Removing an unknown framework is
// not an error.
func (j *Journal) Remove(ctx context.Context, framework string) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM installs WHERE framework = ?;`, framework); err != nil {
		return fmt.Errorf("remove install: %w", err)
	}
	return nil
}

// Get returns the journal row for framework, or (nil, nil) when absent.
func (j *Journal) Get(ctx context.Context, framework string) (*Install, error) {
	row := j.db.QueryRowContext(ctx, `
SELECT framework, category, version, install_path, checksum, installed_at
FROM installs
WHERE framework = ?;
`, framework)

	in, err := scanInstall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get install: %w", err)
	}
	return in, nil
}

// List returns all journal rows ordered by framework name.
func (j *Journal) List(ctx context.Context) ([]Install, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT framework, category, version, install_path, checksum, installed_at
FROM installs
ORDER BY framework ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("list installs: %w", err)
	}
	defer rows.Close()

	var out []Install
	for rows.Next() {
		in, err := scanInstall(rows)
		if err != nil {
			return nil, fmt.Errorf("list installs: %w", err)
		}
		out = append(out, *in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list installs: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInstall(s scanner) (*Install, error) {
	var in Install
	var installedAt string
	if err := s.Scan(&in.Framework, &in.Category, &in.Version, &in.InstallPath, &in.Checksum, &installedAt); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339Nano, installedAt); err == nil {
		in.InstalledAt = t
	}
	return &in, nil
}

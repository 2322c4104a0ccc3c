// Package appstore persists the account's app list, the selected app ids
// and the signed-in user between runs.
//
// Storage is the shared SQLite database (see package database), in three
// tables: apps, selected_apps and account.
package appstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nathanbeddoewebdev/revdash/internal/database"
	"nathanbeddoewebdev/revdash/internal/domain"
)

// Repository defines the persistence interface for the app selection.
type Repository interface {
	// LoadAppList returns the stored apps in the order they were saved.
	LoadAppList() ([]domain.Application, error)

	// SaveAppList replaces the stored app list.
	SaveAppList(apps []domain.Application) error

	// LoadSelectedIDs returns the selected app ids in selection order.
	LoadSelectedIDs() ([]string, error)

	// SaveSelectedIDs replaces the selected app ids.
	SaveSelectedIDs(ids []string) error

	// LoadUser returns the signed-in user, or nil if none is stored.
	LoadUser() (*domain.User, error)

	// SaveUser stores the signed-in user.
	SaveUser(user domain.User) error

	// Clear removes everything. Used on logout.
	Clear() error

	// Close releases database resources.
	Close() error
}

// SQLiteRepository implements Repository backed by a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the repository at the default path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt creates or opens a repository at the given path.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	err := database.Migrate(r.db,
		`CREATE TABLE IF NOT EXISTS apps (
			id           TEXT PRIMARY KEY,
			position     INTEGER NOT NULL,
			name         TEXT NOT NULL,
			bundle_id    TEXT NOT NULL DEFAULT '',
			package_name TEXT NOT NULL DEFAULT '',
			icon_url     TEXT NOT NULL DEFAULT '',
			updated_at   TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS selected_apps (
			position INTEGER PRIMARY KEY,
			app_id   TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS account (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			user_id    TEXT NOT NULL,
			email      TEXT NOT NULL,
			name       TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		)`,
	)
	if err != nil {
		return fmt.Errorf("appstore: %w", err)
	}
	return nil
}

// LoadAppList returns the stored apps in the order they were saved.
func (r *SQLiteRepository) LoadAppList() ([]domain.Application, error) {
	rows, err := r.db.Query(`
		SELECT id, name, bundle_id, package_name, icon_url
		FROM apps ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("appstore: query failed: %w", err)
	}
	defer rows.Close()

	apps := []domain.Application{}
	for rows.Next() {
		var a domain.Application
		if err := rows.Scan(&a.ID, &a.Name, &a.BundleID, &a.PackageName, &a.IconURL); err != nil {
			return nil, fmt.Errorf("appstore: scan failed: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appstore: query failed: %w", err)
	}
	return apps, nil
}

// SaveAppList replaces the stored app list. Duplicate ids keep their first
// position.
func (r *SQLiteRepository) SaveAppList(apps []domain.Application) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return r.replace("apps", func(tx *sql.Tx) error {
		for i, a := range apps {
			_, err := tx.Exec(`
				INSERT INTO apps (id, position, name, bundle_id, package_name, icon_url, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO NOTHING`,
				a.ID, i, a.Name, a.BundleID, a.PackageName, a.IconURL, now,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadSelectedIDs returns the selected app ids in selection order.
func (r *SQLiteRepository) LoadSelectedIDs() ([]string, error) {
	rows, err := r.db.Query(`SELECT app_id FROM selected_apps ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("appstore: query failed: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("appstore: scan failed: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appstore: query failed: %w", err)
	}
	return ids, nil
}

// SaveSelectedIDs replaces the selected app ids.
func (r *SQLiteRepository) SaveSelectedIDs(ids []string) error {
	if len(ids) > domain.MaxSelectedApps {
		return fmt.Errorf("appstore: %d apps selected, at most %d allowed: %w", len(ids), domain.MaxSelectedApps, domain.ErrValidation)
	}
	return r.replace("selected_apps", func(tx *sql.Tx) error {
		for i, id := range ids {
			_, err := tx.Exec(`
				INSERT INTO selected_apps (position, app_id) VALUES (?, ?)
				ON CONFLICT(app_id) DO NOTHING`, i, id)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadUser returns the signed-in user, or nil if none is stored.
func (r *SQLiteRepository) LoadUser() (*domain.User, error) {
	row := r.db.QueryRow(`SELECT user_id, email, name, avatar_url FROM account WHERE id = 1`)

	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("appstore: query failed: %w", err)
	}
	return &u, nil
}

// SaveUser upserts the signed-in user.
func (r *SQLiteRepository) SaveUser(user domain.User) error {
	_, err := r.db.Exec(`
		INSERT INTO account (id, user_id, email, name, avatar_url, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			name = excluded.name,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at`,
		user.ID, user.Email, user.Name, user.AvatarURL, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("appstore: upsert failed: %w", err)
	}
	return nil
}

// Clear removes the stored apps, selection and user.
func (r *SQLiteRepository) Clear() error {
	for _, table := range []string{"apps", "selected_apps", "account"} {
		if _, err := r.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("appstore: clear %s failed: %w", table, err)
		}
	}
	return nil
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// replace empties table and refills it with fill inside one transaction.
func (r *SQLiteRepository) replace(table string, fill func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("appstore: begin failed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		return fmt.Errorf("appstore: clear %s failed: %w", table, err)
	}
	if err := fill(tx); err != nil {
		return fmt.Errorf("appstore: write %s failed: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("appstore: commit failed: %w", err)
	}
	return nil
}

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DonovanMods/modlist-installer/internal/domain"
)

// HistoryEntry is one recorded install attempt
type HistoryEntry struct {
	ID          int64
	ModName     string
	DownloadURL string
	Status      string
	Reason      string
	Version     string
	ModID       string
	RootDir     string
	InstalledAt time.Time
}

// RecordOutcome appends an install outcome to the history
func (d *DB) RecordOutcome(o domain.InstallOutcome) error {
	_, err := d.Exec(`
		INSERT INTO install_history (mod_name, download_url, status, reason, version, mod_id, root_dir, installed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, o.Mod.Name, o.Mod.DownloadURL, o.Status.String(), nullable(o.Reason), nullable(o.Mod.Version),
		nullable(o.ModID), nullable(o.RootDir), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording outcome: %w", err)
	}
	return nil
}

// RecentOutcomes returns the newest entries first. limit <= 0 returns all.
func (d *DB) RecentOutcomes(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := d.Query(`
		SELECT id, mod_name, download_url, status, reason, version, mod_id, root_dir, installed_at
		FROM install_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}

	return entries, rows.Err()
}

// LastInstalled returns the most recent successful install of a mod, or nil
func (d *DB) LastInstalled(modName string) (*HistoryEntry, error) {
	row := d.QueryRow(`
		SELECT id, mod_name, download_url, status, reason, version, mod_id, root_dir, installed_at
		FROM install_history
		WHERE mod_name = ? AND status = ?
		ORDER BY id DESC
		LIMIT 1
	`, modName, domain.StatusInstalled.String())

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*HistoryEntry, error) {
	var e HistoryEntry
	var reason, version, modID, rootDir sql.NullString
	err := s.Scan(&e.ID, &e.ModName, &e.DownloadURL, &e.Status, &reason, &version, &modID, &rootDir, &e.InstalledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning history entry: %w", err)
	}
	e.Reason = reason.String
	e.Version = version.String
	e.ModID = modID.String
	e.RootDir = rootDir.String
	return &e, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

/*
 * iptv2m3u turns an IPTV reseller-panel account into portable M3U playlists.
 * Copyright (C) 2025  Ziad Boughdir
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package database keeps a local history of account checks and probe runs
// in an embedded SQLite file.
package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

// Manager handles database operations
type Manager struct {
	db          *sql.DB
	initialized bool
}

// NewManager opens (or creates) the history database at path.
func NewManager(path string) (*Manager, error) {
	utils.InfoLog("Opening history database at %s", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		utils.ErrorLog("Failed to open history database: %v", err)
		db.Close()
		return nil, fmt.Errorf("history database test failed: %w", err)
	}

	// The embedded driver serializes writes; one connection avoids
	// SQLITE_BUSY under concurrent batch recording.
	db.SetMaxOpenConns(1)

	manager := &Manager{db: db}
	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	manager.initialized = true
	return manager, nil
}

// Close releases the database handle.
func (m *Manager) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// initSchema creates the history tables if they don't exist.
func (m *Manager) initSchema() error {
	if m == nil || m.db == nil {
		return fmt.Errorf("database not initialized")
	}

	if _, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS account_checks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			host TEXT NOT NULL,
			username TEXT NOT NULL,
			status TEXT,
			expire TEXT,
			max_connections TEXT,
			total_channels INTEGER,
			total_radios INTEGER,
			total_vod INTEGER,
			checked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		utils.ErrorLog("Failed to create account_checks table: %v", err)
		return fmt.Errorf("failed to create account_checks table: %w", err)
	}

	if _, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS probe_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			total INTEGER NOT NULL,
			working INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			probed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		utils.ErrorLog("Failed to create probe_runs table: %v", err)
		return fmt.Errorf("failed to create probe_runs table: %w", err)
	}

	return nil
}

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

// Package config is the persisted settings store. Settings are addressed
// as section/key pairs and survive runs in a YAML file under the user's
// home directory.
package config

import (
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

// DefaultFileName is the settings file looked up in the home directory
// when no explicit path is given.
const DefaultFileName = ".iptv2m3u.yaml"

// Built-in defaults per section/key.
var defaults = map[string]interface{}{
	"cache.max_age_seconds":        300,
	"cache.max_items":              100,
	"testing.max_concurrent_tests": 10,
	"testing.timeout_seconds":      5,
	"history.database_path":        "",
	"output.directory":             "",
}

// Store reads and writes persisted settings. It wraps its own viper
// instance so library callers are not coupled to the CLI's flag-bound
// global.
type Store struct {
	v    *viper.Viper
	path string
}

// Load opens the settings store at path, or at $HOME/.iptv2m3u.yaml when
// path is empty. A missing file is not an error: defaults apply and are
// written out so the user has a file to edit.
func Load(path string) (*Store, error) {
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, utils.PrintErrorAndReturn(err)
		}
		path = filepath.Join(home, DefaultFileName)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			if writeErr := v.SafeWriteConfigAs(path); writeErr != nil {
				utils.WarnLog("Could not write default settings to %s: %v", path, writeErr)
			} else {
				utils.InfoLog("Wrote default settings to %s", path)
			}
		} else if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, utils.PrintErrorAndReturn(err)
		}
	}

	return &Store{v: v, path: path}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// GetInt returns an integer setting, falling back when the key is unset
// or not a number.
func (s *Store) GetInt(section, key string, fallback int) int {
	full := section + "." + key
	if !s.v.IsSet(full) {
		return fallback
	}
	if value := s.v.GetInt(full); value > 0 {
		return value
	}
	return fallback
}

// GetString returns a string setting, falling back when the key is unset
// or empty.
func (s *Store) GetString(section, key, fallback string) string {
	full := section + "." + key
	if value := s.v.GetString(full); value != "" {
		return value
	}
	return fallback
}

// Set stores a value and persists the file.
func (s *Store) Set(section, key string, value interface{}) error {
	s.v.Set(section+"."+key, value)
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return utils.PrintErrorAndReturn(err)
	}
	return nil
}

// CacheMaxAge returns the summary-cache TTL.
func (s *Store) CacheMaxAge() time.Duration {
	return time.Duration(s.GetInt("cache", "max_age_seconds", 300)) * time.Second
}

// CacheMaxItems returns the summary-cache item cap.
func (s *Store) CacheMaxItems() int {
	return s.GetInt("cache", "max_items", 100)
}

// ProbeTimeout returns the per-probe deadline.
func (s *Store) ProbeTimeout() time.Duration {
	return time.Duration(s.GetInt("testing", "timeout_seconds", 5)) * time.Second
}

// ProbeMaxConcurrent returns the probe fan-out width.
func (s *Store) ProbeMaxConcurrent() int {
	return s.GetInt("testing", "max_concurrent_tests", 10)
}

// HistoryDatabasePath returns the SQLite history location, defaulting next
// to the settings file.
func (s *Store) HistoryDatabasePath() string {
	if path := s.GetString("history", "database_path", ""); path != "" {
		return path
	}
	return filepath.Join(filepath.Dir(s.path), ".iptv2m3u-history.db")
}

// OutputDirectory returns where playlists are saved when the user gives a
// bare filename; empty means the current directory.
func (s *Store) OutputDirectory() string {
	return s.GetString("output", "directory", "")
}

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

package database

import (
	"fmt"

	"github.com/ziadboughdir/iptv2m3u/pkg/panel"
	"github.com/ziadboughdir/iptv2m3u/pkg/prober"
	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

// AccountCheck is one recorded account-info fetch. Timestamps are kept as
// the text SQLite stores, they are only ever displayed.
type AccountCheck struct {
	ID             int64
	Host           string
	Username       string
	Status         string
	Expire         string
	MaxConnections string
	TotalChannels  int
	TotalRadios    int
	TotalVOD       int
	CheckedAt      string
}

// ProbeRun is one recorded reachability-probe aggregate.
type ProbeRun struct {
	ID       int64
	Source   string
	Total    int
	Working  int
	Failed   int
	ProbedAt string
}

// RecordAccountCheck stores one successful summary fetch.
func (m *Manager) RecordAccountCheck(summary *panel.AccountSummary) (int64, error) {
	utils.DebugLog("Database: Recording account check - host: %s, user: %s", summary.Host, summary.Username)
	if m == nil || m.db == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	result, err := m.db.Exec(`
		INSERT INTO account_checks
		  (host, username, status, expire, max_connections, total_channels, total_radios, total_vod)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, summary.Host, summary.Username, summary.Status, summary.Expire, summary.MaxConnections,
		summary.TotalChannels, summary.TotalRadios, summary.TotalVOD)
	if err != nil {
		utils.ErrorLog("Database error recording account check: %v", err)
		return 0, err
	}
	return result.LastInsertId()
}

// RecentAccountChecks returns the newest account checks, most recent first.
func (m *Manager) RecentAccountChecks(limit int) ([]AccountCheck, error) {
	if m == nil || m.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := m.db.Query(`
		SELECT id, host, username, status, expire, max_connections,
		       total_channels, total_radios, total_vod, checked_at
		FROM account_checks
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		utils.ErrorLog("Database error listing account checks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var checks []AccountCheck
	for rows.Next() {
		var c AccountCheck
		if err := rows.Scan(&c.ID, &c.Host, &c.Username, &c.Status, &c.Expire, &c.MaxConnections,
			&c.TotalChannels, &c.TotalRadios, &c.TotalVOD, &c.CheckedAt); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

// RecordProbeRun stores one probe aggregate. source identifies what was
// probed, typically a host or a playlist filename.
func (m *Manager) RecordProbeRun(source string, result *prober.Result) (int64, error) {
	utils.DebugLog("Database: Recording probe run - source: %s, working: %d/%d", source, result.Working, result.Total)
	if m == nil || m.db == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	res, err := m.db.Exec(`
		INSERT INTO probe_runs (source, total, working, failed)
		VALUES (?, ?, ?, ?)
	`, source, result.Total, result.Working, result.Failed)
	if err != nil {
		utils.ErrorLog("Database error recording probe run: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

// RecentProbeRuns returns the newest probe runs, most recent first.
func (m *Manager) RecentProbeRuns(limit int) ([]ProbeRun, error) {
	if m == nil || m.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := m.db.Query(`
		SELECT id, source, total, working, failed, probed_at
		FROM probe_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		utils.ErrorLog("Database error listing probe runs: %v", err)
		return nil, err
	}
	defer rows.Close()

	var runs []ProbeRun
	for rows.Next() {
		var r ProbeRun
		if err := rows.Scan(&r.ID, &r.Source, &r.Total, &r.Working, &r.Failed, &r.ProbedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

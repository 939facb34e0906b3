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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SummaryFetches tracks account-info fetches by outcome
	SummaryFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv2m3u_summary_fetches_total",
		Help: "Total number of account summary fetches",
	}, []string{"outcome"})

	// SummaryCacheHits tracks summary requests served from the cache
	SummaryCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv2m3u_summary_cache_hits_total",
		Help: "Total number of summary requests served from cache",
	})

	// PlaylistBuilds tracks playlist assemblies by content kind and outcome
	PlaylistBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv2m3u_playlist_builds_total",
		Help: "Total number of playlist builds",
	}, []string{"kind", "outcome"})

	// ProbeRuns tracks reachability probe runs
	ProbeRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv2m3u_probe_runs_total",
		Help: "Total number of reachability probe runs",
	})

	// ProbeWorkingStreams reports the working stream count of the last probe
	ProbeWorkingStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv2m3u_probe_working_streams",
		Help: "Working stream count of the most recent probe run",
	})

	// ProbeFailedStreams reports the failed stream count of the last probe
	ProbeFailedStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv2m3u_probe_failed_streams",
		Help: "Failed stream count of the most recent probe run",
	})
)

// RecordSummaryFetch increments the fetch counter for one outcome,
// "success" or "error".
func RecordSummaryFetch(outcome string) {
	SummaryFetches.WithLabelValues(outcome).Inc()
}

// RecordPlaylistBuild increments the build counter for one kind and outcome.
func RecordPlaylistBuild(kind, outcome string) {
	PlaylistBuilds.WithLabelValues(kind, outcome).Inc()
}

// RecordProbeRun updates the probe counters and last-run gauges.
func RecordProbeRun(working, failed int) {
	ProbeRuns.Inc()
	ProbeWorkingStreams.Set(float64(working))
	ProbeFailedStreams.Set(float64(failed))
}

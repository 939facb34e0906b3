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

// Package prober checks which streams of a playlist are actually
// reachable.
package prober

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

// Defaults applied when the caller passes zero values.
const (
	DefaultTimeout       = 5 * time.Second
	DefaultMaxConcurrent = 10
)

// Result aggregates one probe run. WorkingURLs is keyed by stream URL, not
// list position, so it stays valid after the source playlist is filtered
// or reordered.
type Result struct {
	Total       int
	Working     int
	Failed      int
	WorkingURLs map[string]struct{}
}

// Prober issues lightweight HEAD checks against playlist streams.
type Prober struct {
	Client        *http.Client
	Timeout       time.Duration
	MaxConcurrent int
	UserAgent     string
}

// New creates a prober with defaults filled in.
func New(timeout time.Duration, maxConcurrent int) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Prober{
		Client:        &http.Client{},
		Timeout:       timeout,
		MaxConcurrent: maxConcurrent,
		UserAgent:     utils.GetIPTVUserAgent(),
	}
}

// Probe scans playlist text for candidate streams and checks each one
// concurrently. Per-URL failures count as not-working and never abort the
// run; the only bound is the per-probe timeout.
func (p *Prober) Probe(ctx context.Context, playlistText string) *Result {
	candidates := CandidateURLs(playlistText)
	result := &Result{
		Total:       len(candidates),
		WorkingURLs: make(map[string]struct{}),
	}
	if len(candidates) == 0 {
		return result
	}

	var mu sync.Mutex
	var working int
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(p.MaxConcurrent)

	for _, streamURL := range candidates {
		streamURL := streamURL
		group.Go(func() error {
			if p.probeOne(ctx, streamURL) {
				mu.Lock()
				// Counts are per candidate, so a URL listed twice
				// contributes twice even though the set holds it once.
				working++
				result.WorkingURLs[streamURL] = struct{}{}
				mu.Unlock()
			}
			// Failures are recorded, never returned: one dead stream
			// must not cancel the siblings.
			return nil
		})
	}
	group.Wait()

	result.Working = working
	result.Failed = result.Total - result.Working
	utils.InfoLog("Probe finished: %d/%d streams working", result.Working, result.Total)
	return result
}

// probeOne reports whether one stream URL answers a HEAD request with a
// 2xx status inside the per-probe timeout.
func (p *Prober) probeOne(ctx context.Context, streamURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, streamURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.Client.Do(req)
	if err != nil {
		utils.DebugLog("Probe failed for %s: %v", utils.MaskURL(streamURL), err)
		return false
	}
	resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// CandidateURLs extracts the probe candidates from playlist text: every
// line starting with #EXTINF whose immediately following line starts with
// http. Metadata lines without a qualifying next line are dropped.
func CandidateURLs(playlistText string) []string {
	var urls []string
	lines := strings.Split(playlistText, "\n")
	for i := 0; i < len(lines)-1; i++ {
		if !strings.HasPrefix(strings.TrimSpace(lines[i]), "#EXTINF") {
			continue
		}
		next := strings.TrimSpace(lines[i+1])
		if strings.HasPrefix(next, "http") {
			urls = append(urls, next)
			i++
		}
	}
	return urls
}

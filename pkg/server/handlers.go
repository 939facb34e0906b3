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

package server

import (
	"io"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/ziadboughdir/iptv2m3u/pkg/metrics"
	"github.com/ziadboughdir/iptv2m3u/pkg/panel"
	"github.com/ziadboughdir/iptv2m3u/pkg/playlist"
	"github.com/ziadboughdir/iptv2m3u/pkg/prober"
	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

// handleStatus serves the account summary, from cache when fresh.
func (c *Config) handleStatus(ctx *gin.Context) {
	summary, fromCache, err := panel.FetchSummaryCached(c.endpoint.PlayerAPIURL(), c.client, c.summaryCache)
	if err != nil {
		metrics.RecordSummaryFetch("error")
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if fromCache {
		metrics.SummaryCacheHits.Inc()
	} else {
		metrics.RecordSummaryFetch("success")
		if c.db != nil {
			if _, err := c.db.RecordAccountCheck(summary); err != nil {
				utils.WarnLog("Could not record account check: %v", err)
			}
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"summary": summary, "from_cache": fromCache})
}

// handlePlaylist builds and serves one playlist kind. Query parameters:
// filter narrows by name, probe=true drops entries a reachability check
// marks dead.
func (c *Config) handlePlaylist(ctx *gin.Context) {
	kind := ctx.Param("kind")

	var doc *playlist.Document
	var err error
	switch kind {
	case "live":
		doc, err = c.assembler.BuildLive()
	case "radio":
		doc, err = c.assembler.BuildRadio()
	case "vod":
		doc, err = c.assembler.BuildVOD()
	default:
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown playlist kind: " + kind})
		return
	}
	if err != nil {
		metrics.RecordPlaylistBuild(kind, "error")
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	metrics.RecordPlaylistBuild(kind, "success")

	if filter := ctx.Query("filter"); filter != "" {
		doc = doc.FilterByName(filter)
	}

	if ctx.Query("probe") == "true" {
		result := c.newProber().Probe(ctx.Request.Context(), doc.Encode())
		c.recordProbe(c.endpoint.Host, result)
		doc = doc.FilterWorking(result.WorkingURLs)
	}

	content := doc.Encode()
	if err := utils.SaveTextFile(content, c.playlistTempPath); err != nil {
		utils.WarnLog("Could not stage playlist copy: %v", err)
	}

	filename := utils.DefaultPlaylistFilename(c.endpoint.Host, c.endpoint.Username, c.endpoint.Password)
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "audio/x-mpegurl", []byte(content))
}

// handleProbe checks every stream of the posted playlist text.
func (c *Config) handleProbe(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(body) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "empty playlist body"})
		return
	}

	result := c.newProber().Probe(ctx.Request.Context(), string(body))
	c.recordProbe("api", result)

	working := make([]string, 0, len(result.WorkingURLs))
	for u := range result.WorkingURLs {
		working = append(working, u)
	}
	sort.Strings(working)

	ctx.JSON(http.StatusOK, gin.H{
		"total":        result.Total,
		"working":      result.Working,
		"failed":       result.Failed,
		"working_urls": working,
	})
}

func (c *Config) handleAccountChecks(ctx *gin.Context) {
	if c.db == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "history persistence disabled"})
		return
	}
	checks, err := c.db.RecentAccountChecks(50)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"checks": checks})
}

func (c *Config) handleProbeRuns(ctx *gin.Context) {
	if c.db == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "history persistence disabled"})
		return
	}
	runs, err := c.db.RecentProbeRuns(50)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (c *Config) newProber() *prober.Prober {
	return prober.New(c.settings.ProbeTimeout(), c.settings.ProbeMaxConcurrent())
}

func (c *Config) recordProbe(source string, result *prober.Result) {
	metrics.RecordProbeRun(result.Working, result.Failed)
	if c.db != nil {
		if _, err := c.db.RecordProbeRun(source, result); err != nil {
			utils.WarnLog("Could not record probe run: %v", err)
		}
	}
}

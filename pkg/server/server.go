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

// Package server exposes one account's summary, playlists, and probe
// results over a small HTTP API.
package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"

	"github.com/ziadboughdir/iptv2m3u/pkg/cache"
	"github.com/ziadboughdir/iptv2m3u/pkg/config"
	"github.com/ziadboughdir/iptv2m3u/pkg/database"
	"github.com/ziadboughdir/iptv2m3u/pkg/panel"
	"github.com/ziadboughdir/iptv2m3u/pkg/playlist"
	"github.com/ziadboughdir/iptv2m3u/pkg/resolver"
	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

var defaultPlaylistTempPath = filepath.Join(os.TempDir(), uuid.NewV4().String()+".iptv2m3u.m3u")

// Config represents the server configuration
type Config struct {
	Hostname string
	Port     int

	settings  *config.Store
	endpoint  *resolver.AccountEndpoint
	client    *panel.Client
	assembler *playlist.Assembler

	summaryCache *cache.Cache
	db           *database.Manager

	// staging path for the most recently generated playlist
	playlistTempPath string
}

// NewServer resolves the account and wires up all server components.
func NewServer(settings *config.Store, rawURL, hostname string, port int) (*Config, error) {
	normalized, err := resolver.Normalize(rawURL)
	if err != nil {
		return nil, utils.PrintErrorAndReturn(err)
	}
	endpoint, err := resolver.Resolve(normalized)
	if err != nil {
		return nil, utils.PrintErrorAndReturn(err)
	}

	client := panel.NewClient(endpoint)
	serverConfig := &Config{
		Hostname:         hostname,
		Port:             port,
		settings:         settings,
		endpoint:         endpoint,
		client:           client,
		assembler:        playlist.NewAssembler(client),
		summaryCache:     cache.New(settings.CacheMaxAge(), settings.CacheMaxItems()),
		playlistTempPath: defaultPlaylistTempPath,
	}

	// History persistence is best effort: the API stays usable without it.
	db, err := database.NewManager(settings.HistoryDatabasePath())
	if err != nil {
		utils.WarnLog("History database unavailable, running without persistence: %v", err)
	} else {
		serverConfig.db = db
	}

	return serverConfig, nil
}

// Serve the iptv2m3u api
func (c *Config) Serve() error {
	utils.InfoLog("[iptv2m3u] Server is starting for %s...", c.endpoint.Host)

	if c.db != nil {
		utils.InfoLog("Bootstrap: history database ready")
	} else {
		utils.WarnLog("Bootstrap: history database is DISABLED (no persistence)")
	}

	router := gin.Default()
	router.Use(cors.Default())

	c.routes(router.Group("/"))

	defer func() {
		if c.db != nil {
			c.db.Close()
		}
	}()

	return router.Run(fmt.Sprintf("%s:%d", c.Hostname, c.Port))
}

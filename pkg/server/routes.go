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
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (c *Config) routes(r *gin.RouterGroup) {
	r.GET("/status", c.handleStatus)
	r.GET("/playlist/:kind", c.handlePlaylist)
	r.POST("/probe", c.handleProbe)

	r.GET("/history/checks", c.handleAccountChecks)
	r.GET("/history/probes", c.handleProbeRuns)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

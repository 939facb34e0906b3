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

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadboughdir/iptv2m3u/pkg/server"
)

var (
	serveHostname string
	servePort     int
)

var serveCmd = &cobra.Command{
	Use:   "serve [account-url]",
	Short: "Serve the account over a small HTTP API",
	Long: `Starts an HTTP server exposing the account: GET /status for the
summary, GET /playlist/{live,radio,vod} for playlists, POST /probe for
reachability checks, /history/* for past results and /metrics for
Prometheus.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		srv, err := server.NewServer(settings, args[0], serveHostname, servePort)
		if err != nil {
			return err
		}
		return srv.Serve()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHostname, "host", "", "Hostname to bind (default all interfaces)")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Listening port")
	rootCmd.AddCommand(serveCmd)
}

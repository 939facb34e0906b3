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
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesnetherton/m3u"
	"github.com/spf13/cobra"

	"github.com/ziadboughdir/iptv2m3u/pkg/playlist"
	"github.com/ziadboughdir/iptv2m3u/pkg/prober"
	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

var probeRemoveFailed bool

var probeCmd = &cobra.Command{
	Use:   "probe [playlist-file]",
	Short: "Check which streams of a playlist are reachable",
	Long: `Issues a lightweight HEAD request against every stream of an M3U file
and reports how many answer. With --remove-failed, rewrites the file
keeping only the streams that answered.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		path := args[0]

		// Parse first so a broken file fails fast instead of producing a
		// misleading all-dead probe result.
		if _, err := m3u.Parse(path); err != nil {
			return utils.PrintErrorAndReturn(fmt.Errorf("not a usable M3U file: %w", err))
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return utils.PrintErrorAndReturn(err)
		}
		text := string(data)

		p := prober.New(settings.ProbeTimeout(), settings.ProbeMaxConcurrent())
		result := p.Probe(context.Background(), text)
		fmt.Printf("%d streams probed: %d working, %d failed\n", result.Total, result.Working, result.Failed)

		db := openHistory(settings)
		defer db.Close()
		if db != nil {
			if _, err := db.RecordProbeRun(filepath.Base(path), result); err != nil {
				utils.WarnLog("Could not record probe run: %v", err)
			}
		}

		if probeRemoveFailed && result.Failed > 0 {
			doc := playlist.Parse(text).FilterWorking(result.WorkingURLs)
			if err := utils.SaveTextFile(doc.Encode(), path); err != nil {
				return err
			}
			fmt.Printf("Rewrote %s with %d working entries\n", path, doc.Len())
		}

		return nil
	},
}

func init() {
	probeCmd.Flags().BoolVar(&probeRemoveFailed, "remove-failed", false, "Rewrite the playlist keeping only working streams")
	rootCmd.AddCommand(probeCmd)
}

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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadboughdir/iptv2m3u/pkg/panel"
	"github.com/ziadboughdir/iptv2m3u/pkg/playlist"
	"github.com/ziadboughdir/iptv2m3u/pkg/prober"
	"github.com/ziadboughdir/iptv2m3u/pkg/resolver"
	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

var (
	generateKind       string
	generateOutput     string
	generateFilter     string
	generateProbe      bool
	generateDropFailed bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [account-url]",
	Short: "Generate an M3U playlist from the account",
	Long: `Builds a live, radio or VOD M3U playlist by querying the panel's
category and stream listings, and saves it next to you.

The default filename is derived from the account ({host}_{user}_{pass}.m3u)
so playlists from different accounts never collide.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		normalized, err := resolver.Normalize(args[0])
		if err != nil {
			return err
		}
		client, err := panel.NewClientFromURL(normalized)
		if err != nil {
			return err
		}
		assembler := playlist.NewAssembler(client)

		var doc *playlist.Document
		switch generateKind {
		case "live":
			doc, err = assembler.BuildLive()
		case "radio":
			doc, err = assembler.BuildRadio()
		case "vod":
			doc, err = assembler.BuildVOD()
		default:
			return fmt.Errorf("unknown playlist kind %q (want live, radio or vod)", generateKind)
		}
		if err != nil {
			return err
		}
		utils.InfoLog("Assembled %d %s entries", doc.Len(), generateKind)

		if generateFilter != "" {
			before := doc.Len()
			doc = doc.FilterByName(generateFilter)
			fmt.Printf("Filter %q kept %d of %d entries\n", generateFilter, doc.Len(), before)
		}

		if generateProbe {
			db := openHistory(settings)
			defer db.Close()

			p := prober.New(settings.ProbeTimeout(), settings.ProbeMaxConcurrent())
			result := p.Probe(context.Background(), doc.Encode())
			fmt.Printf("Probe: %d/%d streams working, %d failed\n", result.Working, result.Total, result.Failed)
			if db != nil {
				endpoint := client.Endpoint
				if _, err := db.RecordProbeRun(endpoint.Host, result); err != nil {
					utils.WarnLog("Could not record probe run: %v", err)
				}
			}
			if generateDropFailed {
				doc = doc.FilterWorking(result.WorkingURLs)
				fmt.Printf("Dropped failed streams, %d entries remain\n", doc.Len())
			}
		}

		output := generateOutput
		if output == "" {
			endpoint := client.Endpoint
			output = utils.DefaultPlaylistFilename(endpoint.Host, endpoint.Username, endpoint.Password)
			if dir := settings.OutputDirectory(); dir != "" {
				output = filepath.Join(dir, output)
			}
		}

		if err := utils.SaveTextFile(doc.Encode(), output); err != nil {
			return err
		}
		fmt.Printf("Saved %d entries to %s\n", doc.Len(), output)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateKind, "kind", "k", "live", "Playlist kind: live, radio or vod")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file (default {host}_{user}_{pass}.m3u)")
	generateCmd.Flags().StringVar(&generateFilter, "filter", "", "Keep only entries whose name contains this text")
	generateCmd.Flags().BoolVar(&generateProbe, "probe", false, "Probe stream reachability after assembling")
	generateCmd.Flags().BoolVar(&generateDropFailed, "drop-failed", false, "With --probe, drop streams that failed the check")
	rootCmd.AddCommand(generateCmd)
}

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
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent account checks and probe runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		db := openHistory(settings)
		if db == nil {
			return fmt.Errorf("history database unavailable")
		}
		defer db.Close()

		checks, err := db.RecentAccountChecks(historyLimit)
		if err != nil {
			return err
		}
		fmt.Printf("Account checks (%d):\n", len(checks))
		for _, c := range checks {
			fmt.Printf("  %s  %s@%s  status=%s expire=%s streams=%d/%d/%d\n",
				c.CheckedAt, c.Username, c.Host, c.Status, c.Expire,
				c.TotalChannels, c.TotalRadios, c.TotalVOD)
		}

		runs, err := db.RecentProbeRuns(historyLimit)
		if err != nil {
			return err
		}
		fmt.Printf("Probe runs (%d):\n", len(runs))
		for _, r := range runs {
			fmt.Printf("  %s  %s  %d/%d working, %d failed\n",
				r.ProbedAt, r.Source, r.Working, r.Total, r.Failed)
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of rows per table")
	rootCmd.AddCommand(historyCmd)
}

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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ziadboughdir/iptv2m3u/pkg/config"
	"github.com/ziadboughdir/iptv2m3u/pkg/database"
	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "iptv2m3u",
	Short: "Turn an IPTV reseller-panel account into M3U playlists",
	Long: `iptv2m3u talks to an Xtream-style reseller panel with the credentials
you already have and turns the account into something portable:

- account status, expiry and stream counts (info)
- live, radio and VOD M3U playlists (generate)
- reachability checks for existing playlists (probe)
- a small HTTP API serving all of the above (serve)`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Settings file (default is $HOME/"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().Bool("debug-logging", false, "Enable debug logging")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Println("Error binding flags to viper:", err)
		os.Exit(1)
	}
}

func initLogging() {
	if viper.GetBool("debug-logging") {
		utils.Config.DebugLoggingEnabled = true
		utils.Config.LogLevel = utils.LevelDebug
	}
}

// loadSettings opens the persisted settings store for the current run.
func loadSettings() (*config.Store, error) {
	return config.Load(cfgFile)
}

// openHistory opens the history database. History is best effort: commands
// keep working without it.
func openHistory(settings *config.Store) *database.Manager {
	db, err := database.NewManager(settings.HistoryDatabasePath())
	if err != nil {
		utils.WarnLog("History database unavailable: %v", err)
		return nil
	}
	return db
}

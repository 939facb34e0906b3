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
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadboughdir/iptv2m3u/pkg/cache"
	"github.com/ziadboughdir/iptv2m3u/pkg/database"
	"github.com/ziadboughdir/iptv2m3u/pkg/panel"
	"github.com/ziadboughdir/iptv2m3u/pkg/resolver"
	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

var infoBatchFile string

var infoCmd = &cobra.Command{
	Use:   "info [account-url]",
	Short: "Show account status, expiry and stream counts",
	Long: `Fetches account information from the panel: status, expiry, connection
limits and the number of live, radio and VOD streams.

Accepts the URL shapes users typically have at hand: a player_api.php or
get.php URL with query credentials, a URL with user:pass@ userinfo, or a
direct stream link with the credentials in its path.

With --batch, reads one URL per line from a file and checks all accounts,
continuing past individual failures.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		store := cache.New(settings.CacheMaxAge(), settings.CacheMaxItems())
		db := openHistory(settings)
		defer db.Close()

		if infoBatchFile != "" {
			return runBatchInfo(infoBatchFile, store, db)
		}
		if len(args) != 1 {
			return fmt.Errorf("an account URL is required unless --batch is given")
		}

		summary, err := fetchOne(args[0], store, db)
		if err != nil {
			return err
		}
		fmt.Print(summary.String())
		return nil
	},
}

func init() {
	infoCmd.Flags().StringVar(&infoBatchFile, "batch", "", "File with one account URL per line")
	rootCmd.AddCommand(infoCmd)
}

// fetchOne resolves one raw URL and fetches its summary, serving from the
// shared cache when fresh. The raw input is the cache key so the same
// pasted URL always hits the same entry.
func fetchOne(raw string, store *cache.Cache, db *database.Manager) (*panel.AccountSummary, error) {
	normalized, err := resolver.Normalize(raw)
	if err != nil {
		return nil, err
	}
	client, err := panel.NewClientFromURL(normalized)
	if err != nil {
		return nil, err
	}

	summary, fromCache, err := panel.FetchSummaryCached(raw, client, store)
	if err != nil {
		return nil, err
	}
	if !fromCache && db != nil {
		if _, err := db.RecordAccountCheck(summary); err != nil {
			utils.WarnLog("Could not record account check: %v", err)
		}
	}
	return summary, nil
}

// batchResult pairs one input line with its outcome.
type batchResult struct {
	input   string
	summary *panel.AccountSummary
	err     error
}

// runBatchInfo checks every URL in the file concurrently. Unparseable
// lines are skipped, failed fetches are reported against their input, and
// neither stops the rest of the batch.
func runBatchInfo(path string, store *cache.Cache, db *database.Manager) error {
	file, err := os.Open(path)
	if err != nil {
		return utils.PrintErrorAndReturn(err)
	}
	defer file.Close()

	var inputs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}
	if err := scanner.Err(); err != nil {
		return utils.PrintErrorAndReturn(err)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no account URLs found in %s", path)
	}

	utils.InfoLog("Checking %d accounts from %s", len(inputs), path)

	results := make([]batchResult, len(inputs))
	var mu sync.Mutex
	var group errgroup.Group
	group.SetLimit(4)

	for i, input := range inputs {
		i, input := i, input
		group.Go(func() error {
			summary, err := fetchOne(input, store, db)
			mu.Lock()
			results[i] = batchResult{input: input, summary: summary, err: err}
			mu.Unlock()
			// One bad account never stops the batch.
			return nil
		})
	}
	group.Wait()

	failures := 0
	for _, r := range results {
		fmt.Printf("==> %s\n", utils.MaskQueryCredentials(r.input))
		if r.err != nil {
			failures++
			fmt.Printf("    error: %v\n\n", r.err)
			continue
		}
		fmt.Print(indent(r.summary.String(), "    "))
		fmt.Println()
	}

	fmt.Printf("%d/%d accounts checked successfully\n", len(results)-failures, len(results))
	return nil
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n") + "\n"
}

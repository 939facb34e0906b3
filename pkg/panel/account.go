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

package panel

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/ziadboughdir/iptv2m3u/pkg/cache"
	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

// Sentinel values surfaced to users. They are contract values that appear
// verbatim in output, not internal placeholders.
const (
	SentinelUnlimited = "Unlimited"
	SentinelUnknown   = "Unknown"
	SentinelInvalid   = "Invalid"
)

// AccountSummary is the assembled result of one account-info fetch. It is
// built whole; a partially filled summary is never returned.
type AccountSummary struct {
	Host              string `json:"host"`
	Username          string `json:"username"`
	Password          string `json:"password"`
	M3UURL            string `json:"m3u_url"`
	MaxConnections    string `json:"max_connections"`
	ActiveConnections string `json:"active_connections"`
	IsTrial           bool   `json:"is_trial"`
	Status            string `json:"status"`
	Expire            string `json:"expire"`
	TotalChannels     int    `json:"total_channels"`
	TotalRadios       int    `json:"total_radios"`
	TotalVOD          int    `json:"total_vod"`
}

// String renders the summary as aligned key/value text with the password
// masked, suitable for terminal display.
func (s *AccountSummary) String() string {
	trial := "No"
	if s.IsTrial {
		trial = "Yes"
	}

	var b strings.Builder
	for _, kv := range [][2]string{
		{"host", s.Host},
		{"username", s.Username},
		{"password", utils.MaskString(s.Password)},
		{"m3u_url", utils.MaskQueryCredentials(s.M3UURL)},
		{"max_connections", s.MaxConnections},
		{"active_connections", s.ActiveConnections},
		{"trial", trial},
		{"status", s.Status},
		{"expire", s.Expire},
		{"total_channels", strconv.Itoa(s.TotalChannels)},
		{"total_radios", strconv.Itoa(s.TotalRadios)},
		{"total_vod", strconv.Itoa(s.TotalVOD)},
	} {
		fmt.Fprintf(&b, "%-20s %s\n", kv[0]+":", kv[1])
	}
	return b.String()
}

// summaryStage is one step of the account-info pipeline. Stages run in
// order on a single client so a per-stage retry or timeout policy can be
// attached later without restructuring.
type summaryStage struct {
	name string
	run  func(*AccountSummary) error
}

// FetchSummary performs the four sequential panel round trips (account
// info, live count, radio count, VOD count) and assembles the summary.
func (c *Client) FetchSummary() (*AccountSummary, error) {
	summary := &AccountSummary{
		Host:     c.Endpoint.BaseURL(),
		Username: c.Endpoint.Username,
		Password: c.Endpoint.Password,
		M3UURL:   c.Endpoint.M3UURL(),
	}

	stages := []summaryStage{
		{"account_info", c.fetchAccountInfo},
		{"live_count", c.countStage(ActionLiveStreams, func(s *AccountSummary, n int) { s.TotalChannels = n })},
		{"radio_count", c.countStage(ActionRadioStreams, func(s *AccountSummary, n int) { s.TotalRadios = n })},
		{"vod_count", c.countStage(ActionVodStreams, func(s *AccountSummary, n int) { s.TotalVOD = n })},
	}

	for _, stage := range stages {
		if err := stage.run(summary); err != nil {
			return nil, fmt.Errorf("%s: %w", stage.name, err)
		}
		utils.DebugLog("Summary stage %s complete for %s", stage.name, summary.Host)
	}

	return summary, nil
}

// FetchSummaryCached serves the summary from store when a fresh entry
// exists for cacheKey, short-circuiting all four round trips. Successful
// fetches populate the store; failed fetches never touch it.
func FetchSummaryCached(cacheKey string, c *Client, store *cache.Cache) (*AccountSummary, bool, error) {
	if store != nil {
		if cached, ok := store.Get(cacheKey); ok {
			if summary, ok := cached.(AccountSummary); ok {
				utils.DebugLog("Summary cache hit for %s", utils.MaskQueryCredentials(cacheKey))
				copied := summary
				return &copied, true, nil
			}
		}
	}

	summary, err := c.FetchSummary()
	if err != nil {
		return nil, false, err
	}

	if store != nil {
		// Stored by value: later mutation of the returned summary must
		// not alias into the cache.
		store.Set(cacheKey, *summary)
	}

	return summary, false, nil
}

// fetchAccountInfo fills the user-info half of the summary from the plain
// player_api.php document.
func (c *Client) fetchAccountInfo(summary *AccountSummary) error {
	body, err := c.Get("")
	if err != nil {
		return err
	}

	data := []byte(body)
	if !json.Valid(data) {
		return utils.PrintErrorAndReturn(protocolError("failed to parse server info", body))
	}

	summary.MaxConnections = stringFieldOrSentinel(data, SentinelUnlimited, "user_info", "max_connections")
	summary.ActiveConnections = numericFieldAsString(data, "0", "user_info", "active_cons")
	summary.IsTrial = rawFieldString(data, "user_info", "is_trial") == "1"
	summary.Status = statusOrUnknown(data)
	summary.Expire = formatExpire(data)

	return nil
}

// countStage builds a stage that fetches one stream list and counts it.
func (c *Client) countStage(action string, assign func(*AccountSummary, int)) func(*AccountSummary) error {
	return func(summary *AccountSummary) error {
		body, err := c.Get(action)
		if err != nil {
			return err
		}
		n, err := countJSONArray(body)
		if err != nil {
			return utils.PrintErrorAndReturn(err)
		}
		assign(summary, n)
		return nil
	}
}

// countJSONArray returns the element count of a JSON array body, 0 for any
// valid non-array JSON or empty body, and ErrProtocol for garbage.
func countJSONArray(body string) (int, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return 0, nil
	}

	var value interface{}
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return 0, protocolError("failed to parse stream list", body)
	}

	if arr, ok := value.([]interface{}); ok {
		return len(arr), nil
	}
	return 0, nil
}

// rawFieldString returns the raw string form of a JSON field, or "" when the
// field is absent or null. Panels emit the same field as a string on one
// install and a number on the next, so the raw bytes are compared directly.
func rawFieldString(data []byte, keys ...string) string {
	value, dataType, _, err := jsonparser.Get(data, keys...)
	if err != nil || dataType == jsonparser.NotExist || dataType == jsonparser.Null {
		return ""
	}
	return string(value)
}

// stringFieldOrSentinel maps an absent, null, empty, or zero field to the
// sentinel, otherwise to its raw string form.
func stringFieldOrSentinel(data []byte, sentinel string, keys ...string) string {
	raw := rawFieldString(data, keys...)
	if raw == "" || raw == "0" {
		return sentinel
	}
	return raw
}

// numericFieldAsString returns the raw string form of a numeric-ish field,
// or fallback when absent.
func numericFieldAsString(data []byte, fallback string, keys ...string) string {
	raw := rawFieldString(data, keys...)
	if raw == "" {
		return fallback
	}
	return raw
}

func statusOrUnknown(data []byte) string {
	value, dataType, _, err := jsonparser.Get(data, "user_info", "status")
	if err != nil || dataType == jsonparser.NotExist || dataType == jsonparser.Null {
		return SentinelUnknown
	}
	return string(value)
}

// formatExpire turns the exp_date field into a human-readable timestamp.
// Absent or null means the account never expires; a value that is not a
// Unix epoch surfaces as the Invalid sentinel.
func formatExpire(data []byte) string {
	raw := rawFieldString(data, "user_info", "exp_date")
	if raw == "" || raw == SentinelUnlimited {
		return SentinelUnlimited
	}

	epoch, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return SentinelInvalid
	}
	return time.Unix(epoch, 0).Format("2006-01-02 15:04:05")
}

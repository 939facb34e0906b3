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

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SaveTextFile writes content to path, creating parent directories as needed.
// Empty content is refused so a failed generation never truncates a playlist.
func SaveTextFile(content, path string) error {
	if strings.TrimSpace(content) == "" {
		return PrintErrorAndReturn(fmt.Errorf("no content to save"))
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return PrintErrorAndReturn(fmt.Errorf("creating directory %s: %w", dir, err))
		}
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return PrintErrorAndReturn(fmt.Errorf("writing %s: %w", path, err))
	}

	DebugLog("Saved %d bytes to %s", len(content), path)
	return nil
}

// DefaultPlaylistFilename derives a playlist filename from the account the
// playlist was generated for: {host}_{user}_{pass}.m3u with characters that
// are unsafe in filenames replaced by underscores.
func DefaultPlaylistFilename(host, username, password string) string {
	name := host
	if username != "" && password != "" {
		name = fmt.Sprintf("%s_%s_%s", host, username, password)
	}
	name += ".m3u"

	replacer := strings.NewReplacer(":", "_", "/", "_", "?", "_")
	return replacer.Replace(name)
}

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

import "strings"

// MaskString masks sensitive parts of strings for logging.
func MaskString(s string) string {
	if len(s) <= 8 {
		if len(s) <= 0 {
			return "[empty]"
		}
		return s[:1] + "******"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// MaskURL masks the username and password segments of panel stream URLs
// of the form http://host/live/user/pass/id for logging.
func MaskURL(urlStr string) string {
	parts := strings.Split(urlStr, "/")
	if len(parts) >= 7 {
		parts[5] = MaskString(parts[5]) // Password
		parts[4] = MaskString(parts[4]) // Username
	}
	return strings.Join(parts, "/")
}

// MaskQueryCredentials masks username/password query parameter values in a
// raw URL string without parsing it, so it is safe on malformed input.
func MaskQueryCredentials(raw string) string {
	for _, key := range []string{"username=", "password="} {
		idx := strings.Index(raw, key)
		for idx != -1 {
			start := idx + len(key)
			end := strings.IndexAny(raw[start:], "&#")
			if end == -1 {
				end = len(raw) - start
			}
			raw = raw[:start] + MaskString(raw[start:start+end]) + raw[start+end:]
			next := strings.Index(raw[start:], key)
			if next == -1 {
				break
			}
			idx = start + next
		}
	}
	return raw
}

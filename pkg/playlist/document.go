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

// Package playlist assembles and manipulates M3U playlist documents.
package playlist

import (
	"fmt"
	"strings"
)

// Entry is one playlist item: a metadata line and its stream URL.
type Entry struct {
	Name  string `json:"name"`
	Group string `json:"group"`
	Logo  string `json:"logo"`
	URL   string `json:"url"`
}

// Document is an ordered M3U playlist. Entry order is the order streams
// arrived from the panel and is never re-sorted.
type Document struct {
	Entries []Entry
}

// Len returns the number of entries.
func (d *Document) Len() int {
	return len(d.Entries)
}

// Encode renders the document in the exact line format media players
// consume: the #EXTM3U header, then one #EXTINF metadata line and one bare
// URL line per entry.
func (d *Document) Encode() string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, e := range d.Entries {
		fmt.Fprintf(&b, "#EXTINF:-1 tvg-logo=\"%s\" group-title=\"%s\",%s\n%s\n", e.Logo, e.Group, e.Name, e.URL)
	}
	return b.String()
}

// Parse scans playlist text back into a Document. Only #EXTINF lines
// immediately followed by an http(s) URL line become entries; anything else
// is skipped without error, matching how players read real-world playlists.
func Parse(text string) *Document {
	doc := &Document{}
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines)-1; i++ {
		meta := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(meta, "#EXTINF") {
			continue
		}
		streamURL := strings.TrimSpace(lines[i+1])
		if !strings.HasPrefix(streamURL, "http") {
			continue
		}
		doc.Entries = append(doc.Entries, Entry{
			Name:  displayName(meta),
			Group: attribute(meta, "group-title"),
			Logo:  attribute(meta, "tvg-logo"),
			URL:   streamURL,
		})
		i++
	}
	return doc
}

// FilterByName returns a new document keeping only entries whose display
// name contains the query, compared case-insensitively. An empty query
// keeps everything.
func (d *Document) FilterByName(query string) *Document {
	if strings.TrimSpace(query) == "" {
		copied := &Document{Entries: make([]Entry, len(d.Entries))}
		copy(copied.Entries, d.Entries)
		return copied
	}

	needle := strings.ToLower(query)
	out := &Document{}
	for _, e := range d.Entries {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// FilterWorking returns a new document keeping only entries whose URL is in
// the working set, preserving order.
func (d *Document) FilterWorking(working map[string]struct{}) *Document {
	out := &Document{}
	for _, e := range d.Entries {
		if _, ok := working[e.URL]; ok {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// displayName extracts the display name of an #EXTINF line: the text after
// the first comma that follows the quoted attributes. Splitting on the last
// comma instead would truncate names that contain commas.
func displayName(meta string) string {
	rest := meta
	if idx := strings.LastIndex(meta, `"`); idx >= 0 {
		rest = meta[idx+1:]
	}
	if idx := strings.Index(rest, ","); idx >= 0 {
		return strings.TrimSpace(rest[idx+1:])
	}
	return ""
}

// attribute extracts one key="value" attribute from an #EXTINF line.
func attribute(meta, key string) string {
	marker := key + `="`
	start := strings.Index(meta, marker)
	if start < 0 {
		return ""
	}
	rest := meta[start+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}

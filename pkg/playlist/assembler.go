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

package playlist

import (
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/ziadboughdir/iptv2m3u/pkg/panel"
	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

// radioKeywords matches live-list entries that are actually radio stations
// when the panel has no dedicated radio endpoint worth using. Matching is a
// lower-cased substring test on the stream name.
var radioKeywords = []string{"radio", "radiostation", "station", "fm", "am", "radiostations"}

// contentKind captures everything that differs between live, radio, and
// VOD assembly: which panel actions to call, which JSON field carries the
// stream identifier, and how to template the stream URL.
type contentKind struct {
	categoriesAction string
	streamsAction    string
	idField          string
	pathSegment      string
	extension        string
}

var (
	liveKind  = contentKind{panel.ActionLiveCategories, panel.ActionLiveStreams, "stream_id", "live", "ts"}
	radioKind = contentKind{panel.ActionRadioCategories, panel.ActionRadioStreams, "id", "radio", "ts"}
	vodKind   = contentKind{panel.ActionVodCategories, panel.ActionVodStreams, "stream_id", "movie", "mp4"}
)

// Assembler builds playlist documents for one account.
type Assembler struct {
	Client *panel.Client
}

// NewAssembler creates an assembler over a panel client.
func NewAssembler(client *panel.Client) *Assembler {
	return &Assembler{Client: client}
}

// BuildLive assembles the live-TV playlist.
func (a *Assembler) BuildLive() (*Document, error) {
	doc, _, err := a.build(liveKind, nil)
	return doc, err
}

// BuildVOD assembles the movie playlist.
func (a *Assembler) BuildVOD() (*Document, error) {
	doc, _, err := a.build(vodKind, nil)
	return doc, err
}

// BuildRadio assembles the radio playlist. Dedicated radio endpoints are
// tried first; the live scan runs only when that call fails or the panel
// returns an empty stream list. A non-empty list whose entries are all
// unusable still counts as answered, so filtering it down to nothing
// yields an empty document rather than a fallback. The fallback keeps the
// live category map and live URL template because its source data is the
// live list.
func (a *Assembler) BuildRadio() (*Document, error) {
	doc, listed, err := a.build(radioKind, nil)
	if err == nil && listed > 0 {
		return doc, nil
	}
	if err != nil {
		utils.WarnLog("Dedicated radio listing failed (%v), falling back to live scan", err)
	} else {
		utils.DebugLog("Dedicated radio listing empty, falling back to live scan")
	}

	doc, _, err = a.build(liveKind, keepRadioLooking)
	return doc, err
}

// keepRadioLooking reports whether a live entry's name marks it as a radio
// station.
func keepRadioLooking(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range radioKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// build runs the shared two-step protocol: category map first, then the
// stream list, emitting one entry per stream that carries both a name and
// an identifier. keep, when non-nil, further narrows by stream name. The
// second return is the raw stream-list length before any filtering.
func (a *Assembler) build(kind contentKind, keep func(name string) bool) (*Document, int, error) {
	categories, err := a.categoryMap(kind.categoriesAction)
	if err != nil {
		return nil, 0, err
	}

	body, err := a.Client.Get(kind.streamsAction)
	if err != nil {
		return nil, 0, err
	}

	doc := &Document{}
	listed, err := forEachObject(body, kind.streamsAction, func(item []byte) {
		name := itemString(item, "name")
		id := itemString(item, kind.idField)
		if name == "" || id == "" {
			return
		}
		if keep != nil && !keep(name) {
			return
		}

		group, ok := categories[itemString(item, "category_id")]
		if !ok {
			group = "Unknown"
		}

		doc.Entries = append(doc.Entries, Entry{
			Name:  name,
			Group: group,
			Logo:  itemString(item, "stream_icon"),
			URL:   a.streamURL(kind, id),
		})
	})
	if err != nil {
		return nil, 0, err
	}

	utils.DebugLog("Assembled %d of %d listed %s entries for %s", doc.Len(), listed, kind.pathSegment, a.Client.Endpoint.Host)
	return doc, listed, nil
}

// categoryMap fetches one kind's category list and maps category id text
// to category name. Entries missing either field are skipped.
func (a *Assembler) categoryMap(action string) (map[string]string, error) {
	body, err := a.Client.PostForm(action)
	if err != nil {
		return nil, err
	}

	categories := make(map[string]string)
	_, err = forEachObject(body, action, func(item []byte) {
		id := itemString(item, "category_id")
		name := itemString(item, "category_name")
		if id == "" || name == "" {
			return
		}
		categories[id] = name
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// streamURL renders the player-facing stream URL for one identifier.
func (a *Assembler) streamURL(kind contentKind, id string) string {
	e := a.Client.Endpoint
	return fmt.Sprintf("%s/%s/%s/%s/%s.%s", e.BaseURL(), kind.pathSegment, e.Username, e.Password, id, kind.extension)
}

// forEachObject iterates the objects of a JSON array body and returns how
// many elements the array listed, objects or not. A body that is not a
// JSON array surfaces as a protocol error naming the action.
func forEachObject(body, action string, fn func(item []byte)) (int, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || trimmed == "[]" {
		return 0, nil
	}

	listed := 0
	_, err := jsonparser.ArrayEach([]byte(trimmed), func(value []byte, dataType jsonparser.ValueType, offset int, itemErr error) {
		listed++
		if itemErr != nil || dataType != jsonparser.Object {
			return
		}
		fn(value)
	})
	if err != nil {
		return 0, utils.PrintErrorAndReturn(fmt.Errorf("%w: %s did not return a JSON array", panel.ErrProtocol, action))
	}
	return listed, nil
}

// itemString returns one field of a stream or category object as text,
// tolerating the string-today number-tomorrow typing panels are known for.
// Absent and null fields read as "".
func itemString(item []byte, key string) string {
	value, dataType, _, err := jsonparser.Get(item, key)
	if err != nil || dataType == jsonparser.NotExist || dataType == jsonparser.Null {
		return ""
	}
	if dataType == jsonparser.String {
		if unescaped, err := jsonparser.ParseString(value); err == nil {
			return unescaped
		}
	}
	return string(value)
}

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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ziadboughdir/iptv2m3u/pkg/panel"
)

// mockPanel serves canned responses per action for assembler tests.
type mockPanel struct {
	responses map[string]string
	calls     []string
}

func (m *mockPanel) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		action := r.Form.Get("action")
		m.calls = append(m.calls, action)
		if body, ok := m.responses[action]; ok {
			fmt.Fprint(w, body)
			return
		}
		fmt.Fprint(w, "[]")
	}
}

func newTestAssembler(t *testing.T, m *mockPanel) (*Assembler, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(m.handler())
	t.Cleanup(server.Close)

	client, err := panel.NewClientFromURL(server.URL + "/player_api.php?username=user&password=pass")
	if err != nil {
		t.Fatalf("NewClientFromURL() error: %v", err)
	}
	return NewAssembler(client), server
}

func TestBuildLiveEndToEnd(t *testing.T) {
	m := &mockPanel{responses: map[string]string{
		panel.ActionLiveCategories: `[{"category_id":"1","category_name":"News"},{"category_id":"2","category_name":"Sports"}]`,
		panel.ActionLiveStreams: `[
			{"name":"CNN","stream_id":101,"category_id":"1","stream_icon":"http://logo/cnn.png"},
			{"name":"","stream_id":102,"category_id":"1"},
			{"name":"ESPN","stream_id":103,"category_id":"2","stream_icon":"http://logo/espn.png"}
		]`,
	}}
	assembler, server := newTestAssembler(t, m)

	doc, err := assembler.BuildLive()
	if err != nil {
		t.Fatalf("BuildLive() error: %v", err)
	}

	if doc.Len() != 2 {
		t.Fatalf("entries = %d, want 2 (empty-name stream dropped)", doc.Len())
	}
	if doc.Entries[0].Name != "CNN" || doc.Entries[0].Group != "News" {
		t.Errorf("entry 0 = %+v, want CNN in News", doc.Entries[0])
	}
	if doc.Entries[1].Name != "ESPN" || doc.Entries[1].Group != "Sports" {
		t.Errorf("entry 1 = %+v, want ESPN in Sports", doc.Entries[1])
	}
	if want := server.URL + "/live/user/pass/101.ts"; doc.Entries[0].URL != want {
		t.Errorf("entry 0 URL = %q, want %q", doc.Entries[0].URL, want)
	}

	encoded := doc.Encode()
	if !strings.HasPrefix(encoded, "#EXTM3U\n") {
		t.Error("encoded document missing #EXTM3U header")
	}
	if got := strings.Count(encoded, "#EXTINF"); got != 2 {
		t.Errorf("#EXTINF lines = %d, want 2", got)
	}
	wantLine := `#EXTINF:-1 tvg-logo="http://logo/cnn.png" group-title="News",CNN`
	if !strings.Contains(encoded, wantLine+"\n"+server.URL+"/live/user/pass/101.ts\n") {
		t.Errorf("encoded document missing entry pair:\n%s", encoded)
	}
}

func TestBuildLiveUnknownCategory(t *testing.T) {
	m := &mockPanel{responses: map[string]string{
		panel.ActionLiveCategories: `[{"category_id":"1","category_name":"News"}]`,
		panel.ActionLiveStreams:    `[{"name":"Mystery","stream_id":7,"category_id":"99"}]`,
	}}
	assembler, _ := newTestAssembler(t, m)

	doc, err := assembler.BuildLive()
	if err != nil {
		t.Fatalf("BuildLive() error: %v", err)
	}
	if doc.Len() != 1 || doc.Entries[0].Group != "Unknown" {
		t.Errorf("doc = %+v, want one entry in group Unknown", doc.Entries)
	}
}

func TestBuildLiveDropsStreamsMissingID(t *testing.T) {
	m := &mockPanel{responses: map[string]string{
		panel.ActionLiveStreams: `[{"name":"No ID","category_id":"1"},{"name":"Has ID","stream_id":"5","category_id":"1"}]`,
	}}
	assembler, _ := newTestAssembler(t, m)

	doc, err := assembler.BuildLive()
	if err != nil {
		t.Fatalf("BuildLive() error: %v", err)
	}
	if doc.Len() != 1 || doc.Entries[0].Name != "Has ID" {
		t.Errorf("doc = %+v, want only the entry with an identifier", doc.Entries)
	}
}

func TestBuildLiveSkipsCategoriesMissingFields(t *testing.T) {
	m := &mockPanel{responses: map[string]string{
		panel.ActionLiveCategories: `[{"category_id":"1"},{"category_name":"Orphan"},{"category_id":"2","category_name":"Kept"}]`,
		panel.ActionLiveStreams:    `[{"name":"A","stream_id":1,"category_id":"2"}]`,
	}}
	assembler, _ := newTestAssembler(t, m)

	doc, err := assembler.BuildLive()
	if err != nil {
		t.Fatalf("BuildLive() error: %v", err)
	}
	if doc.Entries[0].Group != "Kept" {
		t.Errorf("group = %q, want Kept", doc.Entries[0].Group)
	}
}

func TestBuildVODUsesMovieTemplate(t *testing.T) {
	m := &mockPanel{responses: map[string]string{
		panel.ActionVodCategories: `[{"category_id":"10","category_name":"Action"}]`,
		panel.ActionVodStreams:    `[{"name":"Heat","stream_id":555,"category_id":"10"}]`,
	}}
	assembler, server := newTestAssembler(t, m)

	doc, err := assembler.BuildVOD()
	if err != nil {
		t.Fatalf("BuildVOD() error: %v", err)
	}
	if want := server.URL + "/movie/user/pass/555.mp4"; doc.Entries[0].URL != want {
		t.Errorf("URL = %q, want %q", doc.Entries[0].URL, want)
	}
}

func TestBuildRadioDedicatedEndpoint(t *testing.T) {
	m := &mockPanel{responses: map[string]string{
		panel.ActionRadioCategories: `[{"category_id":"3","category_name":"Stations"}]`,
		panel.ActionRadioStreams:    `[{"name":"Jazz FM","id":42,"category_id":"3"}]`,
	}}
	assembler, server := newTestAssembler(t, m)

	doc, err := assembler.BuildRadio()
	if err != nil {
		t.Fatalf("BuildRadio() error: %v", err)
	}
	if doc.Len() != 1 || doc.Entries[0].Group != "Stations" {
		t.Fatalf("doc = %+v, want one Stations entry", doc.Entries)
	}
	// Dedicated entries use the id field and the radio URL template.
	if want := server.URL + "/radio/user/pass/42.ts"; doc.Entries[0].URL != want {
		t.Errorf("URL = %q, want %q", doc.Entries[0].URL, want)
	}
}

func TestBuildRadioNonEmptyListingNeverFallsBack(t *testing.T) {
	// Dedicated entries without the id field are dropped, but the panel
	// did answer with stations, so the live scan must stay untouched.
	m := &mockPanel{responses: map[string]string{
		panel.ActionRadioStreams: `[{"name":"Jazz FM","stream_id":42,"category_id":"3"}]`,
		panel.ActionLiveStreams:  `[{"name":"Jazz FM","stream_id":42,"category_id":"3"}]`,
	}}
	assembler, _ := newTestAssembler(t, m)

	doc, err := assembler.BuildRadio()
	if err != nil {
		t.Fatalf("BuildRadio() error: %v", err)
	}
	if doc.Len() != 0 {
		t.Errorf("doc = %+v, want empty document", doc.Entries)
	}
	for _, action := range m.calls {
		if action == panel.ActionLiveCategories || action == panel.ActionLiveStreams {
			t.Fatalf("live endpoint %s consulted despite a non-empty radio listing", action)
		}
	}
}

func TestBuildRadioFallsBackToLiveScan(t *testing.T) {
	m := &mockPanel{responses: map[string]string{
		panel.ActionRadioStreams:   `[]`,
		panel.ActionLiveCategories: `[{"category_id":"1","category_name":"Music"}]`,
		panel.ActionLiveStreams: `[
			{"name":"Jazz Radio","stream_id":201,"category_id":"1"},
			{"name":"CNN","stream_id":202,"category_id":"1"},
			{"name":"Classic FM","stream_id":203,"category_id":"1"}
		]`,
	}}
	assembler, server := newTestAssembler(t, m)

	doc, err := assembler.BuildRadio()
	if err != nil {
		t.Fatalf("BuildRadio() error: %v", err)
	}

	if doc.Len() != 2 {
		t.Fatalf("entries = %d, want 2 station-looking live streams", doc.Len())
	}
	if doc.Entries[0].Name != "Jazz Radio" || doc.Entries[1].Name != "Classic FM" {
		t.Errorf("entries = %+v", doc.Entries)
	}
	// Fallback keeps the live URL template and the live category map.
	if want := server.URL + "/live/user/pass/201.ts"; doc.Entries[0].URL != want {
		t.Errorf("URL = %q, want %q (live template, not radio)", doc.Entries[0].URL, want)
	}
	if doc.Entries[0].Group != "Music" {
		t.Errorf("group = %q, want Music from the live category map", doc.Entries[0].Group)
	}
}

func TestBuildRadioFallsBackWhenDedicatedCallFails(t *testing.T) {
	m := &mockPanel{responses: map[string]string{
		panel.ActionRadioStreams: `{"error":"unsupported"}`,
		panel.ActionLiveStreams:  `[{"name":"Talk Station","stream_id":9,"category_id":"1"}]`,
	}}
	assembler, _ := newTestAssembler(t, m)

	doc, err := assembler.BuildRadio()
	if err != nil {
		t.Fatalf("BuildRadio() error: %v", err)
	}
	if doc.Len() != 1 || doc.Entries[0].Name != "Talk Station" {
		t.Errorf("doc = %+v, want the live fallback entry", doc.Entries)
	}
}

func TestKeepRadioLooking(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Jazz Radio", true},
		{"Classic FM", true},
		{"AM Gold", true},
		{"Main Station 1", true},
		{"CNN", false},
		{"ESPN", false},
	}
	for _, tt := range tests {
		if got := keepRadioLooking(tt.name); got != tt.want {
			t.Errorf("keepRadioLooking(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

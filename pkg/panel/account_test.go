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
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ziadboughdir/iptv2m3u/pkg/cache"
)

// mockPanel serves canned responses per action and counts requests.
type mockPanel struct {
	info     string
	lists    map[string]string
	requests int
}

func (m *mockPanel) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.requests++
		r.ParseForm()
		action := r.Form.Get("action")
		if action == "" {
			fmt.Fprint(w, m.info)
			return
		}
		if body, ok := m.lists[action]; ok {
			fmt.Fprint(w, body)
			return
		}
		fmt.Fprint(w, "[]")
	}
}

func completePanel() *mockPanel {
	return &mockPanel{
		info: `{"user_info":{"username":"user","max_connections":"2","active_cons":"1","is_trial":"0","status":"Active","exp_date":"1735689600"}}`,
		lists: map[string]string{
			ActionLiveStreams:  `[{"stream_id":1},{"stream_id":2},{"stream_id":3}]`,
			ActionRadioStreams: `[{"id":10},{"id":11}]`,
			ActionVodStreams:   `[{"stream_id":20},{"stream_id":21},{"stream_id":22},{"stream_id":23},{"stream_id":24}]`,
		},
	}
}

func TestFetchSummaryAssemblesAllStages(t *testing.T) {
	panel := completePanel()
	client, server := newTestClient(t, panel.handler())

	summary, err := client.FetchSummary()
	if err != nil {
		t.Fatalf("FetchSummary() error: %v", err)
	}

	if summary.Host != server.URL {
		t.Errorf("Host = %q, want %q", summary.Host, server.URL)
	}
	if summary.Username != "user" || summary.Password != "pass" {
		t.Errorf("credentials = %q/%q", summary.Username, summary.Password)
	}
	if want := server.URL + "/get.php?username=user&password=pass&type=m3u_plus"; summary.M3UURL != want {
		t.Errorf("M3UURL = %q, want %q", summary.M3UURL, want)
	}
	if summary.MaxConnections != "2" {
		t.Errorf("MaxConnections = %q, want 2", summary.MaxConnections)
	}
	if summary.ActiveConnections != "1" {
		t.Errorf("ActiveConnections = %q, want 1", summary.ActiveConnections)
	}
	if summary.IsTrial {
		t.Error("IsTrial = true, want false")
	}
	if summary.Status != "Active" {
		t.Errorf("Status = %q, want Active", summary.Status)
	}
	if want := time.Unix(1735689600, 0).Format("2006-01-02 15:04:05"); summary.Expire != want {
		t.Errorf("Expire = %q, want %q", summary.Expire, want)
	}
	if summary.TotalChannels != 3 || summary.TotalRadios != 2 || summary.TotalVOD != 5 {
		t.Errorf("counts = %d/%d/%d, want 3/2/5", summary.TotalChannels, summary.TotalRadios, summary.TotalVOD)
	}
	if panel.requests != 4 {
		t.Errorf("panel requests = %d, want 4", panel.requests)
	}
}

func TestFetchSummaryFieldSentinels(t *testing.T) {
	tests := []struct {
		name  string
		info  string
		check func(t *testing.T, s *AccountSummary)
	}{
		{
			name: "absent max_connections reads unlimited",
			info: `{"user_info":{"status":"Active"}}`,
			check: func(t *testing.T, s *AccountSummary) {
				if s.MaxConnections != SentinelUnlimited {
					t.Errorf("MaxConnections = %q, want %s", s.MaxConnections, SentinelUnlimited)
				}
			},
		},
		{
			name: "zero max_connections reads unlimited",
			info: `{"user_info":{"max_connections":"0"}}`,
			check: func(t *testing.T, s *AccountSummary) {
				if s.MaxConnections != SentinelUnlimited {
					t.Errorf("MaxConnections = %q, want %s", s.MaxConnections, SentinelUnlimited)
				}
			},
		},
		{
			name: "numeric max_connections kept verbatim",
			info: `{"user_info":{"max_connections":3}}`,
			check: func(t *testing.T, s *AccountSummary) {
				if s.MaxConnections != "3" {
					t.Errorf("MaxConnections = %q, want 3", s.MaxConnections)
				}
			},
		},
		{
			name: "trial flag is the literal string one",
			info: `{"user_info":{"is_trial":"1"}}`,
			check: func(t *testing.T, s *AccountSummary) {
				if !s.IsTrial {
					t.Error("IsTrial = false, want true")
				}
			},
		},
		{
			name: "numeric trial flag counts as trial",
			info: `{"user_info":{"is_trial":1}}`,
			check: func(t *testing.T, s *AccountSummary) {
				if !s.IsTrial {
					t.Error("IsTrial = false, want true for raw 1")
				}
			},
		},
		{
			name: "absent status reads unknown",
			info: `{"user_info":{"max_connections":"1"}}`,
			check: func(t *testing.T, s *AccountSummary) {
				if s.Status != SentinelUnknown {
					t.Errorf("Status = %q, want %s", s.Status, SentinelUnknown)
				}
			},
		},
		{
			name: "absent expiry reads unlimited",
			info: `{"user_info":{"status":"Active"}}`,
			check: func(t *testing.T, s *AccountSummary) {
				if s.Expire != SentinelUnlimited {
					t.Errorf("Expire = %q, want %s", s.Expire, SentinelUnlimited)
				}
			},
		},
		{
			name: "null expiry reads unlimited",
			info: `{"user_info":{"exp_date":null}}`,
			check: func(t *testing.T, s *AccountSummary) {
				if s.Expire != SentinelUnlimited {
					t.Errorf("Expire = %q, want %s", s.Expire, SentinelUnlimited)
				}
			},
		},
		{
			name: "non-epoch expiry reads invalid",
			info: `{"user_info":{"exp_date":"soon"}}`,
			check: func(t *testing.T, s *AccountSummary) {
				if s.Expire != SentinelInvalid {
					t.Errorf("Expire = %q, want %s", s.Expire, SentinelInvalid)
				}
			},
		},
		{
			name: "absent active connections defaults to zero",
			info: `{"user_info":{"status":"Active"}}`,
			check: func(t *testing.T, s *AccountSummary) {
				if s.ActiveConnections != "0" {
					t.Errorf("ActiveConnections = %q, want 0", s.ActiveConnections)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			panel := completePanel()
			panel.info = tt.info
			client, _ := newTestClient(t, panel.handler())

			summary, err := client.FetchSummary()
			if err != nil {
				t.Fatalf("FetchSummary() error: %v", err)
			}
			tt.check(t, summary)
		})
	}
}

func TestFetchSummaryRejectsNonJSONInfo(t *testing.T) {
	panel := completePanel()
	panel.info = "<html>login</html>"
	client, _ := newTestClient(t, panel.handler())

	_, err := client.FetchSummary()
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("FetchSummary() error = %v, want ErrProtocol", err)
	}
	if !strings.Contains(err.Error(), "account_info") {
		t.Errorf("error %q should name the failed stage", err)
	}
}

func TestFetchSummaryStageFailureStopsPipeline(t *testing.T) {
	panel := completePanel()
	panel.lists[ActionLiveStreams] = "not json"
	client, _ := newTestClient(t, panel.handler())

	_, err := client.FetchSummary()
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("FetchSummary() error = %v, want ErrProtocol", err)
	}
	if !strings.Contains(err.Error(), "live_count") {
		t.Errorf("error %q should name the failed stage", err)
	}
	// account_info plus the failing live_count; radio and VOD never run.
	if panel.requests != 2 {
		t.Errorf("panel requests = %d, want 2", panel.requests)
	}
}

func TestFetchSummaryCountsNonArrayListsAsZero(t *testing.T) {
	panel := completePanel()
	panel.lists[ActionRadioStreams] = `{"error":"no radio"}`
	client, _ := newTestClient(t, panel.handler())

	summary, err := client.FetchSummary()
	if err != nil {
		t.Fatalf("FetchSummary() error: %v", err)
	}
	if summary.TotalRadios != 0 {
		t.Errorf("TotalRadios = %d, want 0", summary.TotalRadios)
	}
}

func TestFetchSummaryCachedHitSkipsPanel(t *testing.T) {
	panel := completePanel()
	client, server := newTestClient(t, panel.handler())
	store := cache.New(time.Minute, 10)

	first, fromCache, err := FetchSummaryCached(server.URL, client, store)
	if err != nil {
		t.Fatalf("first FetchSummaryCached() error: %v", err)
	}
	if fromCache {
		t.Error("first call reported a cache hit")
	}
	if panel.requests != 4 {
		t.Fatalf("panel requests = %d, want 4", panel.requests)
	}

	second, fromCache, err := FetchSummaryCached(server.URL, client, store)
	if err != nil {
		t.Fatalf("second FetchSummaryCached() error: %v", err)
	}
	if !fromCache {
		t.Error("second call missed the cache")
	}
	if panel.requests != 4 {
		t.Errorf("panel requests = %d after cached call, want 4", panel.requests)
	}
	if *second != *first {
		t.Errorf("cached summary = %+v, want %+v", second, first)
	}
}

func TestFetchSummaryCachedReturnsCopy(t *testing.T) {
	panel := completePanel()
	client, server := newTestClient(t, panel.handler())
	store := cache.New(time.Minute, 10)

	first, _, err := FetchSummaryCached(server.URL, client, store)
	if err != nil {
		t.Fatalf("FetchSummaryCached() error: %v", err)
	}
	first.Status = "mutated"

	second, _, err := FetchSummaryCached(server.URL, client, store)
	if err != nil {
		t.Fatalf("FetchSummaryCached() error: %v", err)
	}
	if second.Status == "mutated" {
		t.Error("mutation of a returned summary leaked into the cache")
	}
}

func TestFetchSummaryCachedFailureNotStored(t *testing.T) {
	panel := completePanel()
	panel.info = "not json"
	client, server := newTestClient(t, panel.handler())
	store := cache.New(time.Minute, 10)

	if _, _, err := FetchSummaryCached(server.URL, client, store); err == nil {
		t.Fatal("FetchSummaryCached() succeeded on a broken panel")
	}
	if store.Size() != 0 {
		t.Errorf("cache size = %d after failed fetch, want 0", store.Size())
	}

	panel.info = completePanel().info
	summary, fromCache, err := FetchSummaryCached(server.URL, client, store)
	if err != nil {
		t.Fatalf("FetchSummaryCached() error after recovery: %v", err)
	}
	if fromCache {
		t.Error("recovered call reported a cache hit")
	}
	if summary.Status != "Active" {
		t.Errorf("Status = %q, want Active", summary.Status)
	}
}

func TestCountJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{name: "empty body", body: "", want: 0},
		{name: "whitespace body", body: "  \n", want: 0},
		{name: "empty array", body: "[]", want: 0},
		{name: "populated array", body: `[{"a":1},{"b":2}]`, want: 2},
		{name: "object counts as zero", body: `{"error":"none"}`, want: 0},
		{name: "garbage errors", body: "<html>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := countJSONArray(tt.body)
			if tt.wantErr {
				if !errors.Is(err, ErrProtocol) {
					t.Fatalf("countJSONArray() error = %v, want ErrProtocol", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("countJSONArray() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("countJSONArray() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAccountSummaryStringMasksPassword(t *testing.T) {
	s := &AccountSummary{
		Host:     "http://panel.example.com",
		Username: "user",
		Password: "supersecretpass",
		M3UURL:   "http://panel.example.com/get.php?username=user&password=supersecretpass&type=m3u_plus",
		Status:   "Active",
	}

	out := s.String()
	if strings.Contains(out, "supersecretpass") {
		t.Error("String() leaked the raw password")
	}
	if !strings.Contains(out, "Active") {
		t.Error("String() missing status")
	}
}

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

// Package panel drives the reseller panel's JSON-over-HTTP API
// (player_api.php and friends) for one resolved account.
package panel

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ziadboughdir/iptv2m3u/pkg/resolver"
	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

// Panel API action names.
const (
	ActionLiveCategories  = "get_live_categories"
	ActionLiveStreams     = "get_live_streams"
	ActionRadioCategories = "get_radio_categories"
	ActionRadioStreams    = "get_radio_streams"
	ActionVodCategories   = "get_vod_categories"
	ActionVodStreams      = "get_vod_streams"
)

var (
	// ErrTransport wraps network failures and non-2xx panel responses.
	ErrTransport = errors.New("HTTP request failed")
	// ErrProtocol wraps panel responses that are not the JSON we expect.
	ErrProtocol = errors.New("unexpected panel response")
)

// Client issues requests against one resolved account. It holds no timeout
// of its own: category and stream listings from slow panels can take
// arbitrarily long, and the caller decides how long to wait. Only the
// reachability prober bounds individual requests.
type Client struct {
	Endpoint   *resolver.AccountEndpoint
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a panel client for a resolved endpoint.
func NewClient(endpoint *resolver.AccountEndpoint) *Client {
	return &Client{
		Endpoint:   endpoint,
		UserAgent:  utils.GetIPTVUserAgent(),
		HTTPClient: &http.Client{},
	}
}

// NewClientFromURL resolves raw and creates a client for it.
func NewClientFromURL(raw string) (*Client, error) {
	endpoint, err := resolver.Resolve(raw)
	if err != nil {
		return nil, err
	}
	return NewClient(endpoint), nil
}

// baseHeaders returns the fixed header set presented to panels. Panels
// fingerprint clients, so these imitate a stock Android player app.
func (c *Client) baseHeaders() map[string]string {
	return map[string]string{
		"Accept":          "*/*",
		"User-Agent":      c.UserAgent,
		"Accept-Language": "en-US,en;q=0.5",
		"Referer":         c.Endpoint.BaseURL(),
		"Host":            c.Endpoint.Host,
	}
}

// Fetch performs one HTTP request and returns the response body as text.
// form, when non-nil, is sent URL-encoded as the request body. Caller
// headers override the baseline per key. Network errors and non-2xx status
// codes surface as ErrTransport.
func (c *Client) Fetch(rawURL, method string, form url.Values, headers map[string]string) (string, error) {
	merged := c.baseHeaders()
	for k, v := range headers {
		merged[k] = v
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequest(method, rawURL, body)
	if err != nil {
		return "", utils.PrintErrorAndReturn(fmt.Errorf("%w: %v", ErrTransport, err))
	}
	for k, v := range merged {
		if strings.EqualFold(k, "Host") {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}

	utils.DebugLog("Panel %s %s", method, utils.MaskQueryCredentials(rawURL))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", utils.PrintErrorAndReturn(fmt.Errorf("%w: %v", ErrTransport, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", utils.PrintErrorAndReturn(fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", utils.PrintErrorAndReturn(fmt.Errorf("%w: reading body: %v", ErrTransport, err))
	}

	return string(data), nil
}

// Get issues the player_api.php GET request for an action. An empty action
// requests the plain account/server info document.
func (c *Client) Get(action string) (string, error) {
	u := c.Endpoint.PlayerAPIURL()
	if action != "" {
		u += "&action=" + url.QueryEscape(action)
	}
	return c.Fetch(u, http.MethodGet, nil, nil)
}

// PostForm issues the player_api.php POST request for an action with the
// credentials and action in a form-encoded body, the request shape panels
// expect for category listings.
func (c *Client) PostForm(action string) (string, error) {
	form := url.Values{}
	form.Set("username", c.Endpoint.Username)
	form.Set("password", c.Endpoint.Password)
	form.Set("action", action)

	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded; charset=utf-8",
	}

	return c.Fetch(c.Endpoint.BaseURL()+"/player_api.php", http.MethodPost, form, headers)
}

// protocolError builds an ErrProtocol carrying a truncated body excerpt so
// the offending response is visible in logs without flooding them.
func protocolError(context string, body string) error {
	const maxExcerpt = 200
	excerpt := body
	if len(excerpt) > maxExcerpt {
		excerpt = excerpt[:maxExcerpt] + "..."
	}
	return fmt.Errorf("%w: %s: %q", ErrProtocol, context, excerpt)
}

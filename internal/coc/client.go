package coc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"coc_roster_eval/internal/app"
	"coc_roster_eval/internal/config"

	"github.com/rs/zerolog/log"
)

const baseURL = "https://api.clashofclans.com/v1"

// Client talks to the Clash of Clans API using bearer-token authentication.
type Client struct {
	token        string
	client       *http.Client
	retry        config.RetryConfig
	apiCallCount int64
	apiCallMutex sync.Mutex
}

func NewClient(token string) *Client {
	return &Client{
		token: token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: config.DefaultResilienceConfig.APIRequest,
	}
}

// IncrementAPICall safely increments the API call counter
func (c *Client) IncrementAPICall() {
	c.apiCallMutex.Lock()
	c.apiCallCount++
	c.apiCallMutex.Unlock()
}

// GetAPICallCount returns the current API call count
func (c *Client) GetAPICallCount() int64 {
	c.apiCallMutex.Lock()
	defer c.apiCallMutex.Unlock()
	return c.apiCallCount
}

// ResetAPICallCount resets the API call counter to zero
func (c *Client) ResetAPICallCount() {
	c.apiCallMutex.Lock()
	c.apiCallCount = 0
	c.apiCallMutex.Unlock()
}

// NormalizeTag uppercases a clan/player tag and ensures the leading '#'.
func NormalizeTag(tag string) string {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" {
		return tag
	}
	if !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return tag
}

// escapeTag normalizes a tag and escapes it for use in a URL path segment
// (the '#' prefix must travel as %23).
func escapeTag(tag string) string {
	return url.PathEscape(NormalizeTag(tag))
}

// NotFoundError reports a 404 from the API. Callers on best-effort paths
// treat it the same as any other fetch failure: log and skip.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.Path)
}

// makeAPIRequest creates and executes an authenticated HTTP GET request
func (c *Client) makeAPIRequest(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug().
			Err(err).
			Str("path", path).
			Msg("API request failed")
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	c.IncrementAPICall()
	return resp, nil
}

// handleAPIResponse processes the HTTP response and returns the body bytes
func (c *Client) handleAPIResponse(resp *http.Response, path string) ([]byte, error) {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, &NotFoundError{Path: path}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// getJSON fetches path with retry and decodes the body into out.
// Not-found responses are returned immediately without retrying.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return config.WithRetry(ctx, c.retry, "coc_api_get", func(ctx context.Context) error {
		resp, err := c.makeAPIRequest(ctx, path)
		if err != nil {
			return err
		}

		body, err := c.handleAPIResponse(resp, path)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				return config.Permanent(err)
			}
			return err
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response for %s: %w", path, err)
		}
		return nil
	})
}

// GetClan fetches the clan profile including the full member list
func (c *Client) GetClan(ctx context.Context, clanTag string) (*app.ClanResponse, error) {
	path := "/clans/" + escapeTag(clanTag)

	log.Debug().Str("clan_tag", NormalizeTag(clanTag)).Msg("Fetching clan")

	var clan app.ClanResponse
	if err := c.getJSON(ctx, path, &clan); err != nil {
		return nil, err
	}

	log.Debug().
		Str("clan_tag", clan.Tag).
		Str("clan_name", clan.Name).
		Int("members", len(clan.MemberList)).
		Msg("Successfully fetched clan")

	return &clan, nil
}

// GetPlayer fetches a single player profile
func (c *Client) GetPlayer(ctx context.Context, playerTag string) (*app.Player, error) {
	path := "/players/" + escapeTag(playerTag)

	var player app.Player
	if err := c.getJSON(ctx, path, &player); err != nil {
		return nil, err
	}

	log.Debug().
		Str("player_tag", player.Tag).
		Str("player_name", player.Name).
		Msg("Successfully fetched player")

	return &player, nil
}

// GetLeagueGroup fetches the current CWL group for a clan. Returns a
// NotFoundError when the clan is not in a league season.
func (c *Client) GetLeagueGroup(ctx context.Context, clanTag string) (*app.LeagueGroup, error) {
	path := "/clans/" + escapeTag(clanTag) + "/currentwar/leaguegroup"

	var group app.LeagueGroup
	if err := c.getJSON(ctx, path, &group); err != nil {
		return nil, err
	}

	log.Debug().
		Str("season", group.Season).
		Str("state", group.State).
		Int("rounds", len(group.Rounds)).
		Msg("Successfully fetched league group")

	return &group, nil
}

// GetLeagueWar fetches one CWL war record by its war tag
func (c *Client) GetLeagueWar(ctx context.Context, warTag string) (*app.ClanWar, error) {
	path := "/clanwarleagues/wars/" + escapeTag(warTag)

	var war app.ClanWar
	if err := c.getJSON(ctx, path, &war); err != nil {
		return nil, err
	}

	log.Debug().
		Str("war_tag", NormalizeTag(warTag)).
		Str("state", war.State).
		Int("team_size", war.TeamSize).
		Msg("Successfully fetched league war")

	return &war, nil
}

// GetCurrentWar fetches the clan's current regular war. Returns a
// NotFoundError when the war log is private or no war is available.
func (c *Client) GetCurrentWar(ctx context.Context, clanTag string) (*app.ClanWar, error) {
	path := "/clans/" + escapeTag(clanTag) + "/currentwar"

	var war app.ClanWar
	if err := c.getJSON(ctx, path, &war); err != nil {
		return nil, err
	}

	log.Debug().
		Str("clan_tag", NormalizeTag(clanTag)).
		Str("state", war.State).
		Msg("Successfully fetched current war")

	return &war, nil
}

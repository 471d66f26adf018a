// Package yahoo is the fantasy-league provider client for the Yahoo
// Fantasy Sports v2 API. Responses are XML; the HTTP client handed in is
// expected to carry the OAuth2 session (see NewHTTPClient).
package yahoo

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/albapepper/fantasy-playbook/internal/cache"
	"github.com/albapepper/fantasy-playbook/internal/provider"
	"github.com/albapepper/fantasy-playbook/internal/roster"
)

// DefaultBaseURL is the Fantasy Sports API root.
const DefaultBaseURL = "https://fantasysports.yahooapis.com/fantasy/v2"

// DefaultGameCode selects the basketball game for the current season.
const DefaultGameCode = "nba"

// Config configures a Client.
type Config struct {
	BaseURL      string
	GameCode     string
	HTTPClient   *http.Client
	MaxRetries   int
	RetryBackoff time.Duration
	Cache        cache.Store
	Logger       *slog.Logger
}

// Client implements roster.FantasyService.
type Client struct {
	httpClient *http.Client
	baseURL    string
	gameCode   string
	retry      provider.RetryPolicy
	cache      cache.Store
	logger     *slog.Logger
}

var _ roster.FantasyService = (*Client)(nil)

// NewClient creates a fantasy client. A nil HTTPClient gets an
// unauthenticated client, which is only useful against a test server.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.GameCode == "" {
		cfg.GameCode = DefaultGameCode
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.New(false)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		httpClient: cfg.HTTPClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		gameCode:   cfg.GameCode,
		retry:      provider.RetryPolicy{MaxRetries: cfg.MaxRetries, Wait: cfg.RetryBackoff},
		cache:      cfg.Cache,
		logger:     cfg.Logger,
	}
}

// League is the fantasy league the client operates in.
type League struct {
	Key         string
	Name        string
	CurrentWeek int
}

// --------------------------------------------------------------------------
// XML documents
// --------------------------------------------------------------------------

type leaguesDoc struct {
	Leagues []struct {
		Key         string `xml:"league_key"`
		Name        string `xml:"name"`
		CurrentWeek string `xml:"current_week"`
	} `xml:"users>user>games>game>leagues>league"`
}

type teamsDoc struct {
	Teams []teamRef `xml:"users>user>games>game>teams>team"`
}

type teamRef struct {
	Key  string `xml:"team_key"`
	Name string `xml:"name"`
}

type matchupsDoc struct {
	Matchups []struct {
		Week  string    `xml:"week"`
		Teams []teamRef `xml:"teams>team"`
	} `xml:"team>matchups>matchup"`
}

type rosterDoc struct {
	Players []struct {
		Name struct {
			Full string `xml:"full"`
		} `xml:"name"`
		EditorialTeamAbbr string   `xml:"editorial_team_abbr"`
		EligiblePositions []string `xml:"eligible_positions>position"`
		SelectedPosition  string   `xml:"selected_position>position"`
	} `xml:"team>roster>players>player"`
}

// --------------------------------------------------------------------------
// Endpoints
// --------------------------------------------------------------------------

// CurrentLeague returns the most recently joined league of the user's
// game. It is re-read with the response cache so the current week rolls
// over in a long-running process.
func (c *Client) CurrentLeague(ctx context.Context) (League, error) {
	var doc leaguesDoc
	path := fmt.Sprintf("/users;use_login=1/games;game_keys=%s/leagues", c.gameCode)
	if err := c.getXML(ctx, path, cache.TTLFantasyRoster, &doc); err != nil {
		return League{}, err
	}
	if len(doc.Leagues) == 0 {
		return League{}, fmt.Errorf("no %s leagues for the logged-in user", c.gameCode)
	}

	raw := doc.Leagues[len(doc.Leagues)-1]
	week, err := strconv.Atoi(strings.TrimSpace(raw.CurrentWeek))
	if err != nil {
		return League{}, fmt.Errorf("league %s current_week %q: %w", raw.Key, raw.CurrentWeek, err)
	}
	league := League{Key: raw.Key, Name: raw.Name, CurrentWeek: week}
	c.logger.Debug("Fantasy league selected", "league_key", raw.Key, "week", week)
	return league, nil
}

// OwnTeamKey returns the logged-in user's team in the current league.
func (c *Client) OwnTeamKey(ctx context.Context) (string, error) {
	league, err := c.CurrentLeague(ctx)
	if err != nil {
		return "", err
	}

	var doc teamsDoc
	path := fmt.Sprintf("/users;use_login=1/games;game_keys=%s/teams", c.gameCode)
	if err := c.getXML(ctx, path, cache.TTLFantasyRoster, &doc); err != nil {
		return "", err
	}
	prefix := league.Key + ".t."
	for _, t := range doc.Teams {
		if strings.HasPrefix(t.Key, prefix) {
			return t.Key, nil
		}
	}
	return "", fmt.Errorf("no team of the logged-in user in league %s", league.Key)
}

// OpponentTeamKey returns the other team in the current week's matchup.
func (c *Client) OpponentTeamKey(ctx context.Context) (string, error) {
	league, err := c.CurrentLeague(ctx)
	if err != nil {
		return "", err
	}
	own, err := c.OwnTeamKey(ctx)
	if err != nil {
		return "", err
	}

	var doc matchupsDoc
	path := fmt.Sprintf("/team/%s/matchups;weeks=%d", own, league.CurrentWeek)
	if err := c.getXML(ctx, path, cache.TTLFantasyRoster, &doc); err != nil {
		return "", err
	}
	for _, m := range doc.Matchups {
		for _, t := range m.Teams {
			if t.Key != own {
				return t.Key, nil
			}
		}
	}
	return "", fmt.Errorf("no opponent for %s in week %d", own, league.CurrentWeek)
}

// Roster returns every player on teamKey, injured list included.
func (c *Client) Roster(ctx context.Context, teamKey string) ([]roster.Player, error) {
	var doc rosterDoc
	if err := c.getXML(ctx, "/team/"+teamKey+"/roster", cache.TTLFantasyRoster, &doc); err != nil {
		return nil, err
	}

	players := make([]roster.Player, 0, len(doc.Players))
	for _, p := range doc.Players {
		players = append(players, roster.Player{
			Name:              strings.TrimSpace(p.Name.Full),
			EditorialTeamAbbr: p.EditorialTeamAbbr,
			EligiblePositions: p.EligiblePositions,
			SelectedPosition:  p.SelectedPosition,
		})
	}
	return players, nil
}

// --------------------------------------------------------------------------
// Transport
// --------------------------------------------------------------------------

func (c *Client) getXML(ctx context.Context, path string, ttl time.Duration, v any) error {
	u := c.baseURL + path
	var (
		body []byte
		ok   bool
	)
	if !cache.Bypassed(ctx) {
		body, ok = c.cache.Get(ctx, u)
	}
	if ok {
		c.logger.Debug("Fantasy cache hit", "path", path)
	} else {
		var err error
		body, err = provider.Retry(ctx, c.retry, c.logger, path, func() ([]byte, error) {
			return c.do(ctx, path, u)
		})
		if err != nil {
			return err
		}
	}

	if err := xml.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if !ok {
		c.cache.Set(ctx, u, body, ttl)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &provider.StatusError{Provider: "yahoo", Path: path, Code: resp.StatusCode, Body: provider.Truncate(body, 200)}
	}
	return body, nil
}

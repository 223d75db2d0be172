package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mgsim/internal/game"
)

// APIError is a non-2xx answer from the server. Transport failures are
// returned as plain errors so callers can tell the two apart.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func gamePath(gameID, suffix string) string {
	return "/v1/games/" + url.PathEscape(gameID) + suffix
}

func (c *Client) Rules(ctx context.Context) (game.Rules, error) {
	var out game.Rules
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/rules", nil, &out, "")
	return out, err
}

func (c *Client) CreateGame(ctx context.Context, companies []string, seed *int64) (game.GameView, error) {
	var out game.GameView
	body := map[string]any{"companies": companies}
	if seed != nil {
		body["seed"] = *seed
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", body, &out, "")
	return out, err
}

func (c *Client) Game(ctx context.Context, gameID string) (game.GameView, error) {
	var out game.GameView
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(gameID, ""), nil, &out, "")
	return out, err
}

func (c *Client) StartPeriod(ctx context.Context, gameID string) ([]game.PeriodStartReport, error) {
	var out struct {
		Payments []game.PeriodStartReport `json:"payments"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/periods/start"), nil, &out, "")
	return out.Payments, err
}

func (c *Client) TakeTurn(ctx context.Context, gameID string) (game.TurnResult, error) {
	var out game.TurnResult
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/turns"), nil, &out, "")
	return out, err
}

func (c *Client) ApplyAction(ctx context.Context, gameID string, body map[string]any, idem string) (game.ActionResult, error) {
	var out game.ActionResult
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/actions"), body, &out, idem)
	return out, err
}

func (c *Client) RunAuction(ctx context.Context, gameID string, market game.Market, bids []game.BidInput, idem string) (game.AuctionResult, error) {
	var out game.AuctionResult
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/auctions"), map[string]any{
		"market": market,
		"bids":   bids,
	}, &out, idem)
	return out, err
}

func (c *Client) ClosePeriod(ctx context.Context, gameID string) ([]game.CloseReport, error) {
	var out struct {
		Reports []game.CloseReport `json:"reports"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/periods/close"), nil, &out, "")
	return out.Reports, err
}

func (c *Client) History(ctx context.Context, gameID string) ([][]game.CloseReport, error) {
	var out struct {
		Closes [][]game.CloseReport `json:"closes"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(gameID, "/history"), nil, &out, "")
	return out.Closes, err
}

func (c *Client) AvailableActions(ctx context.Context, gameID string, company int) ([]game.Action, error) {
	var out struct {
		Actions []game.Action `json:"actions"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(gameID, fmt.Sprintf("/companies/%d/actions", company)), nil, &out, "")
	return out.Actions, err
}

func (c *Client) SyncReplay(ctx context.Context, gameID string, commands []map[string]any) ([]map[string]any, error) {
	var out struct {
		Results []map[string]any `json:"results"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID, "/sync/replay"), map[string]any{
		"commands": commands,
	}, &out, "")
	return out.Results, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}

package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"mgsim/internal/api"
	"mgsim/internal/config"
	"mgsim/internal/game"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := game.NewService(game.DefaultRules(), nil, logger)
	srv := httptest.NewServer(api.New(config.APIConfig{}, logger, svc).Handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestClientPlaysAPeriod(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	seed := int64(5)

	view, err := c.CreateGame(ctx, []string{"Acme", "Globex"}, &seed)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Seed != 5 || len(view.Companies) != 2 || view.DeckRemaining != 75 {
		t.Fatalf("view=%+v", view)
	}

	payments, err := c.StartPeriod(ctx, view.ID)
	if err != nil || len(payments) != 2 {
		t.Fatalf("start: payments=%v err=%v", payments, err)
	}
	turn, err := c.TakeTurn(ctx, view.ID)
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if turn.Draw.Type != game.CardDecision && turn.Draw.Type != game.CardRisk {
		t.Fatalf("draw=%+v", turn.Draw)
	}

	res, err := c.ApplyAction(ctx, view.ID, map[string]any{"company": 1, "kind": "pass"}, "pass-1")
	if err != nil || res.Kind != game.ActionPass {
		t.Fatalf("action: res=%+v err=%v", res, err)
	}
	actions, err := c.AvailableActions(ctx, view.ID, 1)
	if err != nil || len(actions) == 0 {
		t.Fatalf("actions=%v err=%v", actions, err)
	}

	reports, err := c.ClosePeriod(ctx, view.ID)
	if err != nil || len(reports) != 2 {
		t.Fatalf("close: reports=%v err=%v", reports, err)
	}
	hist, err := c.History(ctx, view.ID)
	if err != nil || len(hist) != 1 {
		t.Fatalf("history=%v err=%v", hist, err)
	}
}

func TestClientReturnsAPIError(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Game(context.Background(), "6f1c1f55-2d8e-4a57-9d39-4c3b2b9f3a10")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got=%v want APIError", err)
	}
	if apiErr.Status != 404 || apiErr.Message != game.ErrGameNotFound.Error() {
		t.Fatalf("api error=%+v", apiErr)
	}
}

func TestClientRules(t *testing.T) {
	c := newTestClient(t)
	rules, err := c.Rules(context.Background())
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if rules.BaseWage[3] != 24 || rules.Chips.CarryoverCap != 3 {
		t.Fatalf("rules=%+v", rules)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := LoadSession(); err == nil {
		t.Fatalf("expected missing session to fail")
	}
	want := Session{GameID: "g-1", Companies: []string{"Acme"}, APIBase: "http://x"}
	if err := SaveSession(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadSession()
	if err != nil || got.GameID != want.GameID || got.APIBase != want.APIBase {
		t.Fatalf("got=%+v err=%v", got, err)
	}
	if err := ClearSession(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := LoadSession(); err == nil {
		t.Fatalf("expected cleared session to fail")
	}
}

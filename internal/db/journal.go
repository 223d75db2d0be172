package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mgsim/internal/game"
)

const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS mgsim;

CREATE TABLE IF NOT EXISTS mgsim.journal_entries (
	id           BIGSERIAL PRIMARY KEY,
	tx_group_id  UUID        NOT NULL,
	game_id      UUID        NOT NULL,
	period       INT         NOT NULL,
	kind         TEXT        NOT NULL,
	company      TEXT        NOT NULL DEFAULT '',
	amount       BIGINT      NOT NULL DEFAULT 0,
	metadata     JSONB       NOT NULL DEFAULT '{}'::jsonb,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS journal_entries_game_idx ON mgsim.journal_entries (game_id, period);
`

type entry struct {
	Period   int
	Kind     string
	Company  string
	Amount   int64
	Metadata map[string]any
}

// Journal is an append-only record of settled closes and auctions. It is not
// a save format: games cannot be restored from it.
type Journal struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewJournal(pool *pgxpool.Pool, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{db: pool, log: logger}
}

func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

func (j *Journal) RecordClose(ctx context.Context, gameID uuid.UUID, reports []game.CloseReport) error {
	return j.append(ctx, gameID, closeEntries(reports))
}

func (j *Journal) RecordAuction(ctx context.Context, gameID uuid.UUID, period int, result game.AuctionResult) error {
	return j.append(ctx, gameID, auctionEntries(period, result))
}

func (j *Journal) append(ctx context.Context, gameID uuid.UUID, entries []entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	group := uuid.New()
	for _, e := range entries {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode %s metadata: %w", e.Kind, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO mgsim.journal_entries (tx_group_id, game_id, period, kind, company, amount, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		`, group, gameID, e.Period, e.Kind, e.Company, e.Amount, string(raw)); err != nil {
			return fmt.Errorf("insert %s entry: %w", e.Kind, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	j.log.Debug("journal appended", "game_id", gameID, "entries", len(entries), "tx_group_id", group)
	return nil
}

// closeEntries journals each company's close, followed by its emergency loan
// when the close left it short of cash.
func closeEntries(reports []game.CloseReport) []entry {
	out := make([]entry, 0, len(reports))
	for _, r := range reports {
		out = append(out, entry{
			Period:  r.Period,
			Kind:    "period_close",
			Company: r.Company,
			Amount:  r.Profit.G,
			Metadata: map[string]any{
				"profit":          r.Profit,
				"fixed":           r.Fixed,
				"tax":             r.Tax,
				"previous_equity": r.PreviousEquity,
				"end_payment":     r.EndPayment,
				"cash":            r.Cash,
				"carried_chips":   r.CarriedChips,
				"emergency_loan":  r.EmergencyLoan,
			},
		})
		if r.EmergencyLoan > 0 {
			out = append(out, entry{
				Period:   r.Period,
				Kind:     "emergency_loan",
				Company:  r.Company,
				Amount:   r.EmergencyLoan,
				Metadata: map[string]any{"cash": r.Cash},
			})
		}
	}
	return out
}

func auctionEntries(period int, result game.AuctionResult) []entry {
	if result.Winner == nil {
		return nil
	}
	winner := ""
	for _, d := range result.Display {
		if d.IsWinner {
			winner = d.Company
			break
		}
	}
	return []entry{{
		Period:  period,
		Kind:    "auction",
		Company: winner,
		Amount:  result.Revenue,
		Metadata: map[string]any{
			"market":   result.Market,
			"ranking":  result.Ranking,
			"rejected": len(result.Rejected),
		},
	}}
}

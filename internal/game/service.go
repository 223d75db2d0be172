package game

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Recorder journals settled events outside the process. Implementations must
// not retain the slices they are given.
type Recorder interface {
	RecordClose(ctx context.Context, gameID uuid.UUID, reports []CloseReport) error
	RecordAuction(ctx context.Context, gameID uuid.UUID, period int, result AuctionResult) error
}

type CreateGameInput struct {
	Companies []string
	Seed      *int64
}

type ActionInput struct {
	GameID         uuid.UUID
	Company        int
	Request        ActionRequest
	IdempotencyKey string
}

type BidInput struct {
	Company      int   `json:"company"`
	DisplayPrice int64 `json:"display_price"`
	Quantity     int   `json:"quantity"`
}

type AuctionInput struct {
	GameID         uuid.UUID
	Market         Market
	Bids           []BidInput
	IdempotencyKey string
}

type session struct {
	mu      sync.Mutex
	id      uuid.UUID
	seed    int64
	engine  *Engine
	state   *GameState
	closes  [][]CloseReport
	claimed map[string]struct{}
	// lastDraw remembers the decision card drawn on the current turn so a
	// special offer can only be bought from the card actually held.
	lastDraw *Card
}

type Service struct {
	rules Rules
	rec   Recorder
	log   *slog.Logger
	mu    sync.Mutex
	games map[uuid.UUID]*session
}

func NewService(rules Rules, rec Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		rules: rules,
		rec:   rec,
		log:   logger,
		games: map[uuid.UUID]*session{},
	}
}

func (s *Service) Rules() Rules {
	return s.rules
}

func (s *Service) CreateGame(ctx context.Context, in CreateGameInput) (GameView, error) {
	names := make([]string, 0, len(in.Companies))
	for _, name := range in.Companies {
		names = append(names, strings.TrimSpace(name))
	}
	var seed int64
	if in.Seed != nil {
		seed = *in.Seed
	} else {
		var err error
		if seed, err = newSeed(); err != nil {
			return GameView{}, err
		}
	}

	engine := NewSeededEngine(s.rules, seed, s.log)
	state, err := engine.NewGame(names)
	if err != nil {
		return GameView{}, err
	}
	sess := &session{
		id:      uuid.New(),
		seed:    seed,
		engine:  engine,
		state:   state,
		claimed: map[string]struct{}{},
	}

	s.mu.Lock()
	s.games[sess.id] = sess
	s.mu.Unlock()

	s.log.Info("game created", "game_id", sess.id, "companies", len(names), "seed", seed)
	return sess.view(), nil
}

func (s *Service) Game(ctx context.Context, id uuid.UUID) (GameView, error) {
	sess, err := s.session(id)
	if err != nil {
		return GameView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

func (s *Service) StartPeriod(ctx context.Context, id uuid.UUID) ([]PeriodStartReport, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.engine.StartPeriod(sess.state)
}

func (s *Service) TakeTurn(ctx context.Context, id uuid.UUID) (TurnResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return TurnResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out, err := sess.engine.TakeTurn(sess.state)
	if err != nil {
		return out, err
	}
	sess.lastDraw = nil
	if out.Draw.Type == CardDecision && out.Draw.Card != nil {
		card := *out.Draw.Card
		sess.lastDraw = &card
	}
	return out, nil
}

func (s *Service) AvailableActions(ctx context.Context, id uuid.UUID, company int) ([]Action, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	c, err := sess.state.Company(company)
	if err != nil {
		return nil, err
	}
	return sess.engine.AvailableDecisionActions(c, sess.state), nil
}

func (s *Service) ApplyAction(ctx context.Context, in ActionInput) (ActionResult, error) {
	sess, err := s.session(in.GameID)
	if err != nil {
		return ActionResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.claimIdempotency(in.IdempotencyKey); err != nil {
		return ActionResult{}, err
	}
	res, err := sess.applyAction(in.Company, in.Request)
	if err != nil {
		sess.releaseIdempotency(in.IdempotencyKey)
		return res, err
	}
	return res, nil
}

func (s *Service) RunAuction(ctx context.Context, in AuctionInput) (AuctionResult, error) {
	sess, err := s.session(in.GameID)
	if err != nil {
		return AuctionResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.claimIdempotency(in.IdempotencyKey); err != nil {
		return AuctionResult{}, err
	}

	bids := make([]Bid, 0, len(in.Bids))
	for _, b := range in.Bids {
		bids = append(bids, sess.engine.CreateBid(sess.state, b.Company, b.DisplayPrice, b.Quantity))
	}
	result, err := sess.engine.RunAuction(sess.state, in.Market, bids)
	if err != nil {
		sess.releaseIdempotency(in.IdempotencyKey)
		return result, err
	}
	if s.rec != nil && result.Winner != nil {
		if err := s.rec.RecordAuction(ctx, sess.id, sess.state.CurrentPeriod, result); err != nil {
			s.log.Error("record auction failed", "game_id", sess.id, "err", err)
		}
	}
	return result, nil
}

// ClosePeriod closes the period and covers any cash shortfall with emergency
// short-term loans in fixed units.
func (s *Service) ClosePeriod(ctx context.Context, id uuid.UUID) ([]CloseReport, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	reports, err := sess.engine.ClosePeriod(sess.state)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		c := sess.state.Companies[reports[i].Index]
		if borrowed := coverShortfall(c, s.rules.EmergencyLoanUnit); borrowed > 0 {
			reports[i].Cash = c.Cash
			reports[i].EmergencyLoan = borrowed
			s.log.Warn("emergency loan", "game_id", sess.id, "company", c.Name, "amount", borrowed)
		}
	}
	sess.closes = append(sess.closes, reports)

	if s.rec != nil {
		if err := s.rec.RecordClose(ctx, sess.id, reports); err != nil {
			s.log.Error("record close failed", "game_id", sess.id, "err", err)
		}
	}
	return reports, nil
}

func (s *Service) History(ctx context.Context, id uuid.UUID) ([][]CloseReport, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([][]CloseReport, len(sess.closes))
	copy(out, sess.closes)
	return out, nil
}

// ReplaySync applies queued offline actions in order and reports each outcome.
// Already applied idempotency keys are reported as duplicates, not errors.
func (s *Service) ReplaySync(ctx context.Context, id uuid.UUID, commands []map[string]any) ([]map[string]any, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	results := make([]map[string]any, 0, len(commands))
	for _, cmd := range commands {
		idem, _ := cmd["idempotency_key"].(string)
		row := map[string]any{"idempotency_key": idem}
		company, req, err := decodeReplayCommand(cmd)
		if err != nil {
			row["status"] = "invalid"
			row["error"] = err.Error()
			results = append(results, row)
			continue
		}
		if err := sess.claimIdempotency(idem); err != nil {
			row["status"] = "duplicate"
			results = append(results, row)
			continue
		}
		res, err := sess.applyAction(company, req)
		if err != nil {
			sess.releaseIdempotency(idem)
			row["status"] = "failed"
			row["error"] = err.Error()
		} else {
			row["status"] = "applied"
			row["result"] = res
		}
		results = append(results, row)
	}
	return results, nil
}

func (s *Service) session(id uuid.UUID) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return sess, nil
}

func (sess *session) applyAction(company int, req ActionRequest) (ActionResult, error) {
	if req.Kind == ActionBuyBenefit {
		if sess.lastDraw == nil || sess.lastDraw.Benefit == nil || company != sess.state.CurrentPlayerIndex {
			return ActionResult{}, fmt.Errorf("no special offer in hand: %w", ErrActionNotAvailable)
		}
		req.CardID = sess.lastDraw.ID
		req.Benefit = sess.lastDraw.Benefit
		res, err := sess.engine.ApplyAction(sess.state, company, req)
		if err == nil {
			sess.lastDraw = nil
		}
		return res, err
	}
	req.Benefit = nil
	return sess.engine.ApplyAction(sess.state, company, req)
}

func (sess *session) claimIdempotency(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if _, ok := sess.claimed[key]; ok {
		return ErrDuplicateIdempotency
	}
	sess.claimed[key] = struct{}{}
	return nil
}

// releaseIdempotency frees a key whose operation failed so a retry can apply.
func (sess *session) releaseIdempotency(key string) {
	delete(sess.claimed, strings.TrimSpace(key))
}

func (sess *session) view() GameView {
	st := sess.state
	out := GameView{
		ID:                 sess.id.String(),
		Seed:               sess.seed,
		Period:             st.CurrentPeriod,
		Phase:              st.Phase,
		CurrentPlayerIndex: st.CurrentPlayerIndex,
		TurnDirection:      st.TurnDirection,
		WageMultiplier:     st.WageMultiplier,
		DeckRemaining:      len(st.Deck),
		UsedRiskCards:      []string{},
	}
	for id, used := range st.UsedRiskCards {
		if used {
			out.UsedRiskCards = append(out.UsedRiskCards, id)
		}
	}
	sort.Strings(out.UsedRiskCards)
	for i, c := range st.Companies {
		out.Companies = append(out.Companies, CompanyView{
			Index:              i,
			Company:            c.clone(),
			Valuation:          sess.engine.Valuation(c.Inventory),
			ProductionCapacity: sess.engine.ProductionCapacity(c),
			SalesCapacity:      sess.engine.SalesCapacity(c),
		})
	}
	return out
}

func coverShortfall(c *Company, unit int64) int64 {
	if c.Cash >= 0 || unit <= 0 {
		return 0
	}
	units := (-c.Cash + unit - 1) / unit
	borrowed := units * unit
	c.Loans.Short += borrowed
	c.Cash += borrowed
	return borrowed
}

func decodeReplayCommand(cmd map[string]any) (int, ActionRequest, error) {
	var req ActionRequest
	body, ok := cmd["body"].(map[string]any)
	if !ok {
		return 0, req, fmt.Errorf("command body missing")
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, req, err
	}
	var in struct {
		Company int `json:"company"`
		ActionRequest
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return 0, req, err
	}
	if _, err := ParseActionKind(string(in.Kind)); err != nil {
		return 0, req, err
	}
	return in.Company, in.ActionRequest, nil
}

func newSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

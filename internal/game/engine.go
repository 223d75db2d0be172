package game

import (
	"log/slog"
	"math/rand"
)

// Engine applies the game rules to a GameState. It holds no game state of its
// own besides the random source, so one engine drives exactly one game when
// draws must be reproducible from a seed.
type Engine struct {
	rules Rules
	rng   *rand.Rand
	log   *slog.Logger
}

func NewEngine(rules Rules, rng *rand.Rand, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Engine{rules: rules, rng: rng, log: logger}
}

func NewSeededEngine(rules Rules, seed int64, logger *slog.Logger) *Engine {
	return NewEngine(rules, rand.New(rand.NewSource(seed)), logger)
}

func (e *Engine) Rules() Rules {
	return e.rules
}

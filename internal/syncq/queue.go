package syncq

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Command is an action that could not reach the server and waits for replay.
type Command struct {
	GameID         string         `json:"game_id"`
	Body           map[string]any `json:"body"`
	IdempotencyKey string         `json:"idempotency_key"`
	QueuedAt       time.Time      `json:"queued_at"`
}

func queuePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".mg")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "queue.json"), nil
}

func Load() ([]Command, error) {
	path, err := queuePath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Command{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []Command{}, nil
	}
	var out []Command
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func Save(commands []Command) error {
	path, err := queuePath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(commands, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func Push(cmd Command) error {
	commands, err := Load()
	if err != nil {
		return err
	}
	if cmd.QueuedAt.IsZero() {
		cmd.QueuedAt = time.Now().UTC()
	}
	commands = append(commands, cmd)
	return Save(commands)
}

// Split returns the queued commands of one game and keeps the rest queued.
func Split(gameID string) ([]Command, error) {
	commands, err := Load()
	if err != nil {
		return nil, err
	}
	var mine, rest []Command
	for _, cmd := range commands {
		if cmd.GameID == gameID {
			mine = append(mine, cmd)
		} else {
			rest = append(rest, cmd)
		}
	}
	if rest == nil {
		rest = []Command{}
	}
	if err := Save(rest); err != nil {
		return nil, err
	}
	return mine, nil
}

// Wire renders commands in the replay request shape.
func Wire(commands []Command) []map[string]any {
	out := make([]map[string]any, 0, len(commands))
	for _, cmd := range commands {
		out = append(out, map[string]any{
			"idempotency_key": cmd.IdempotencyKey,
			"body":            cmd.Body,
		})
	}
	return out
}

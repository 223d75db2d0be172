package syncq

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPushSplit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	got, err := Load()
	if err != nil || len(got) != 0 {
		t.Fatalf("empty load: got=%v err=%v", got, err)
	}

	cmds := []Command{
		{GameID: "g1", IdempotencyKey: "a", Body: map[string]any{"kind": "pass"}},
		{GameID: "g2", IdempotencyKey: "b", Body: map[string]any{"kind": "pass"}},
		{GameID: "g1", IdempotencyKey: "c", Body: map[string]any{"kind": "hire_worker"}},
	}
	for _, cmd := range cmds {
		if err := Push(cmd); err != nil {
			t.Fatalf("push: %v", err)
		}
	}

	mine, err := Split("g1")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	keys := []string{}
	for _, cmd := range mine {
		keys = append(keys, cmd.IdempotencyKey)
		if cmd.QueuedAt.IsZero() {
			t.Fatalf("queued_at not stamped on %s", cmd.IdempotencyKey)
		}
	}
	if diff := cmp.Diff([]string{"a", "c"}, keys); diff != "" {
		t.Fatalf("split order (-want +got):\n%s", diff)
	}

	rest, err := Load()
	if err != nil || len(rest) != 1 || rest[0].GameID != "g2" {
		t.Fatalf("rest=%v err=%v", rest, err)
	}
}

func TestWire(t *testing.T) {
	got := Wire([]Command{{GameID: "g", IdempotencyKey: "k", Body: map[string]any{"kind": "pass"}}})
	want := []map[string]any{{"idempotency_key": "k", "body": map[string]any{"kind": "pass"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wire (-want +got):\n%s", diff)
	}
}

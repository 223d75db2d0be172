package main

import (
	"testing"

	"mgsim/internal/game"

	"github.com/google/go-cmp/cmp"
)

func TestParseBid(t *testing.T) {
	got, err := parseBid(" 1:32:3 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := game.BidInput{Company: 1, DisplayPrice: 32, Quantity: 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bid (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"1:32", "x:32:3", "1:0:3", "1:32:-1", "-1:32:3"} {
		if _, err := parseBid(bad); err == nil {
			t.Fatalf("expected %q to fail", bad)
		}
	}
}

func TestBuildActionBody(t *testing.T) {
	got, err := buildActionBody("Take_Loan", actFlags{company: 2, amount: 100, loanTerm: "Short"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := map[string]any{"company": 2, "kind": "take_loan", "amount": int64(100), "loan_term": "short"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("body (-want +got):\n%s", diff)
	}

	tests := []struct {
		kind string
		f    actFlags
	}{
		{kind: "fly"},
		{kind: "buy_machine", f: actFlags{machine: "huge"}},
		{kind: "buy_chip", f: actFlags{chip: "luck"}},
		{kind: "take_loan", f: actFlags{amount: 50, loanTerm: "forever"}},
		{kind: "pass", f: actFlags{company: -1}},
	}
	for _, tt := range tests {
		if _, err := buildActionBody(tt.kind, tt.f); err == nil {
			t.Fatalf("expected %s %+v to fail", tt.kind, tt.f)
		}
	}
}

func TestComma(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{-1234567, "-1,234,567"},
	}
	for _, tt := range tests {
		if got := comma(tt.in); got != tt.want {
			t.Fatalf("comma(%d) got=%s want=%s", tt.in, got, tt.want)
		}
	}
}

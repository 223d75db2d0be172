package game

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	FirstPeriod = 2
	LastPeriod  = 5

	MinCompanies = 2
	MaxCompanies = 6
)

var (
	ErrGameNotFound         = errors.New("game not found")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrWrongPhase           = errors.New("action not allowed in current phase")
	ErrGameFinished         = errors.New("game is finished")
	ErrActionNotAvailable   = errors.New("action not available")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidCompanyCount  = errors.New("company count out of range")
	ErrInvalidCompanyName   = errors.New("company name must be 1-32 chars")
	ErrDuplicateIdempotency = errors.New("duplicate idempotency key")
)

type MachineType string

const (
	MachineSmall MachineType = "small"
	MachineLarge MachineType = "large"
)

func ParseMachineType(v string) (MachineType, error) {
	switch MachineType(strings.ToLower(strings.TrimSpace(v))) {
	case MachineSmall:
		return MachineSmall, nil
	case MachineLarge:
		return MachineLarge, nil
	default:
		return "", fmt.Errorf("unknown machine type: %s", v)
	}
}

type ChipKind string

const (
	ChipResearch    ChipKind = "research"
	ChipEducation   ChipKind = "education"
	ChipAdvertising ChipKind = "advertising"
	ChipComputer    ChipKind = "computer"
	ChipInsurance   ChipKind = "insurance"
)

// StrategicChips are the chip kinds that follow the carryover rules.
var StrategicChips = []ChipKind{ChipResearch, ChipEducation, ChipAdvertising}

func ParseChipKind(v string) (ChipKind, error) {
	kind := ChipKind(strings.ToLower(strings.TrimSpace(v)))
	switch kind {
	case ChipResearch, ChipEducation, ChipAdvertising, ChipComputer, ChipInsurance:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown chip kind: %s", v)
	}
}

func (k ChipKind) Strategic() bool {
	return k == ChipResearch || k == ChipEducation || k == ChipAdvertising
}

func roundMoney(v float64) int64 {
	return int64(math.Round(v))
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func validateCompanyName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 1 || len(name) > 32 {
		return fmt.Errorf("%q: %w", name, ErrInvalidCompanyName)
	}
	return nil
}

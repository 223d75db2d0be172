package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mgsim/internal/game"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)

	reportBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8BC34A")).
			Padding(0, 1)
	reportTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
)

type replayRow struct {
	IdempotencyKey string             `json:"idempotency_key"`
	Status         string             `json:"status"`
	Error          string             `json:"error"`
	Result         *game.ActionResult `json:"result"`
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func renderGame(view game.GameView) {
	accent.Printf("\n== PERIOD %d (%s) ==\n", view.Period, view.Phase)
	dir := "clockwise"
	if view.TurnDirection < 0 {
		dir = "reversed"
	}
	fmt.Printf("Game:        %s\n", view.ID)
	fmt.Printf("Turn order:  %s\n", dir)
	fmt.Printf("Wage factor: %.2f\n", view.WageMultiplier)
	fmt.Printf("Deck:        %d cards left\n", view.DeckRemaining)
	if len(view.UsedRiskCards) > 0 {
		fmt.Printf("Used risks:  %s\n", strings.Join(view.UsedRiskCards, ", "))
	}
	fmt.Println()
	fmt.Printf("  %-3s %-14s %8s %8s %5s %5s %5s %4s %4s %4s %-11s %9s %8s\n",
		"#", "COMPANY", "CASH", "EQUITY", "MAT", "WIP", "PROD", "WRK", "SLS", "MCH", "R/E/A/C/I", "LOANS L/S", "VALUE")
	for _, c := range view.Companies {
		marker := " "
		if c.Index == view.CurrentPlayerIndex && view.Phase == game.PhaseAction {
			marker = ">"
		}
		chips := fmt.Sprintf("%d/%d/%d/%d/%d", c.Chips.Research, c.Chips.Education, c.Chips.Advertising, c.Chips.Computer, c.Chips.Insurance)
		loans := fmt.Sprintf("%d/%d", c.Loans.Long, c.Loans.Short)
		fmt.Printf("%s %-3d %-14s %8s %8s %5d %5d %5d %4d %4d %4d %-11s %9s %8s\n",
			marker,
			c.Index,
			truncate(c.Name, 14),
			colorizeMoney(c.Cash),
			comma(c.Equity),
			c.Inventory.Materials,
			c.Inventory.WIP,
			c.Inventory.Products,
			c.Personnel.Workers,
			c.Personnel.Salesmen,
			len(c.Machines),
			chips,
			loans,
			comma(c.Valuation),
		)
	}
	fmt.Println()
}

func renderPeriodStart(payments []game.PeriodStartReport) {
	accent.Println("\n== PERIOD START ==")
	fmt.Printf("%-3s %-14s %8s %8s %8s %8s %8s\n", "#", "COMPANY", "TAX", "DIVIDEND", "INTEREST", "PAID", "CASH")
	for _, p := range payments {
		fmt.Printf("%-3d %-14s %8s %8s %8s %8s %8s\n",
			p.Index,
			truncate(p.Company, 14),
			comma(p.Tax),
			comma(p.Dividend),
			comma(p.Interest),
			comma(p.Payment),
			colorizeMoney(p.Cash),
		)
	}
	fmt.Println()
}

func renderTurn(out game.TurnResult, names []string) {
	for _, idx := range out.Skipped {
		printWarn(fmt.Sprintf("%s skips this turn.", companyName(names, idx)))
	}
	accent.Printf("\n== TURN: %s ==\n", companyName(names, out.Company))
	if out.Draw.Reshuffled {
		printInfo("Deck exhausted, reshuffled.")
	}
	switch {
	case out.Draw.Type == game.CardRisk && out.Draw.Card != nil:
		danger.Printf("Risk card: %s\n", out.Draw.Card.Name)
		if out.Risk != nil {
			fmt.Println(out.Risk.Message)
			for _, eff := range out.Risk.Effects {
				fmt.Printf("  - %s: %s\n", eff.Kind, eff.Detail)
			}
		}
	case out.Draw.Degraded:
		printInfo("Risk slot with no risk card left, play it as a decision.")
	default:
		success.Println("Decision card")
		if out.Draw.Card != nil && out.Draw.Card.Benefit != nil && out.Benefit != nil {
			b := out.Draw.Card.Benefit
			fmt.Printf("Special offer: up to %d %s at %d each\n", out.Benefit.MaxQty, b.Kind, out.Benefit.PricePerUnit)
			for _, cond := range out.Benefit.Conditions {
				fmt.Printf("  - %s\n", cond)
			}
			if !out.Benefit.CanPurchase {
				printWarn("Offer cannot be taken.")
			}
		}
	}
	if len(out.Actions) > 0 {
		renderActions(out.Actions)
	}
}

func renderActions(actions []game.Action) {
	accent.Println("\n== ACTIONS ==")
	if len(actions) == 0 {
		printInfo("No action available.")
		return
	}
	for _, a := range actions {
		fmt.Printf("  %-20s %s\n", a.Kind, a.Label)
	}
	fmt.Println()
}

func renderActionResult(out game.ActionResult) {
	if out.Kind == game.ActionPass {
		printInfo("Passed.")
		return
	}
	printSuccess(out.Message)
	fmt.Printf("Cost: %s  Cash: %s\n", comma(out.Cost), colorizeMoney(out.Cash))
}

func renderAuction(out game.AuctionResult) {
	accent.Printf("\n== SALE: %s ==\n", out.Market.Name)
	for _, r := range out.Rejected {
		printWarn(fmt.Sprintf("rejected company %d: %s", r.Bid.Company, r.Reason))
	}
	if len(out.Display) == 0 {
		printInfo("No valid bid.")
		return
	}
	fmt.Printf("%-14s %8s %8s %5s %5s %4s\n", "COMPANY", "DISPLAY", "CALL", "QTY", "RES", "")
	for _, d := range out.Display {
		tag := ""
		if d.IsParent {
			tag = "P"
		}
		line := fmt.Sprintf("%-14s %8d %8d %5d %5d %4s", truncate(d.Company, 14), d.DisplayPrice, d.CallPrice, d.Quantity, d.ResearchChips, tag)
		if d.IsWinner {
			success.Println(line)
			continue
		}
		fmt.Println(line)
	}
	if out.Winner != nil {
		printSuccess(fmt.Sprintf("Revenue: %s", comma(out.Revenue)))
	}
	fmt.Println()
}

func renderCloseReports(reports []game.CloseReport) {
	if len(reports) == 0 {
		return
	}
	accent.Printf("\n== PERIOD %d CLOSE ==\n", reports[0].Period)
	boxes := make([]string, 0, len(reports))
	for _, r := range reports {
		boxes = append(boxes, reportBox.Render(closeReportBody(r)))
	}
	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
}

func closeReportBody(r game.CloseReport) string {
	var b strings.Builder
	b.WriteString(reportTitle.Render(r.Company))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "PQ  %8s\n", comma(r.Profit.PQ))
	fmt.Fprintf(&b, "VQ  %8s\n", comma(r.Profit.VQ))
	fmt.Fprintf(&b, "MQ  %8s\n", comma(r.Profit.MQ))
	fmt.Fprintf(&b, "F   %8s\n", comma(r.Profit.F))
	if r.Profit.SpecialLoss != 0 {
		fmt.Fprintf(&b, "SL  %8s\n", comma(r.Profit.SpecialLoss))
	}
	fmt.Fprintf(&b, "G   %8s\n", signed(r.Profit.G))
	b.WriteString("------------\n")
	fmt.Fprintf(&b, "Tax %8s\n", comma(r.Tax.Tax))
	fmt.Fprintf(&b, "Div %8s\n", comma(r.Tax.Dividend))
	fmt.Fprintf(&b, "Eq  %8s\n", comma(r.Tax.NewEquity))
	if r.EmergencyLoan > 0 {
		fmt.Fprintf(&b, "Loan%8s\n", comma(r.EmergencyLoan))
	}
	fmt.Fprintf(&b, "Cash%8s", comma(r.Cash))
	return b.String()
}

func renderReplay(results []map[string]any) {
	accent.Println("\n== SYNC ==")
	applied := 0
	for _, raw := range results {
		row, err := decodeInto[replayRow](raw)
		if err != nil {
			printError(err.Error())
			continue
		}
		switch row.Status {
		case "applied":
			applied++
			msg := ""
			if row.Result != nil {
				msg = row.Result.Message
			}
			success.Printf("  %-8s %s %s\n", row.Status, truncate(row.IdempotencyKey, 12), msg)
		case "duplicate":
			neutral.Printf("  %-8s %s\n", row.Status, truncate(row.IdempotencyKey, 12))
		default:
			danger.Printf("  %-8s %s %s\n", row.Status, truncate(row.IdempotencyKey, 12), row.Error)
		}
	}
	printSuccess(fmt.Sprintf("Sync complete: applied=%d total=%d", applied, len(results)))
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func companyName(names []string, idx int) string {
	if idx >= 0 && idx < len(names) {
		return names[idx]
	}
	return fmt.Sprintf("company %d", idx)
}

func colorizeMoney(v int64) string {
	if v < 0 {
		return danger.Sprint(comma(v))
	}
	return comma(v)
}

func signed(v int64) string {
	if v > 0 {
		return "+" + comma(v)
	}
	return comma(v)
}

func comma(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.WriteString(sign)
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		b.WriteByte(',')
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "mgsim/internal/cli"
	"mgsim/internal/config"
	"mgsim/internal/game"
	"mgsim/internal/syncq"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "mg",
		Short:        "Management game table client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL")

	root.AddCommand(
		newNewCmd(&apiBase),
		newStateCmd(&apiBase),
		newStartCmd(&apiBase),
		newTurnCmd(&apiBase),
		newActCmd(&apiBase),
		newAuctionCmd(&apiBase),
		newCloseCmd(&apiBase),
		newActionsCmd(&apiBase),
		newHistoryCmd(&apiBase),
		newSyncCmd(&apiBase),
		newRulesCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

// sessionClient loads the active game and talks to the server it was created on.
func sessionClient(apiBase *string) (*cl.Client, cl.Session, error) {
	sess, err := cl.LoadSession()
	if err != nil {
		return nil, cl.Session{}, err
	}
	base := *apiBase
	if strings.TrimSpace(sess.APIBase) != "" && base == config.LoadCLIFromEnv().APIBaseURL {
		base = sess.APIBase
	}
	return newClient(&base), sess, nil
}

func newNewCmd(apiBase *string) *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "new [company...]",
		Short: "Start a new game with 2 to 6 companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				n, err := promptInt64("Number of companies", game.MinCompanies)
				if err != nil {
					return err
				}
				for i := int64(1); i <= n; i++ {
					name, err := promptRequired(fmt.Sprintf("Company %d name", i))
					if err != nil {
						return err
					}
					names = append(names, name)
				}
			}
			var seedPtr *int64
			if cmd.Flags().Changed("seed") {
				seedPtr = &seed
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			view, err := client.CreateGame(ctx, names, seedPtr)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				GameID:    view.ID,
				Companies: names,
				APIBase:   client.BaseURL,
			}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Game %s created (seed %d).", view.ID, view.Seed))
			renderGame(view)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "deck seed for a reproducible game")
	return cmd
}

func newStateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the table",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, sess, err := sessionClient(apiBase)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			view, err := client.Game(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderGame(view)
			return nil
		},
	}
}

func newStartCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Open the period and settle last period's tax, dividend and interest",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, sess, err := sessionClient(apiBase)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			payments, err := client.StartPeriod(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderPeriodStart(payments)
			return nil
		},
	}
}

func newTurnCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "turn",
		Short: "Draw a card for the company on turn",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, sess, err := sessionClient(apiBase)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := client.TakeTurn(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderTurn(out, sess.Companies)
			return nil
		},
	}
}

type actFlags struct {
	company   int
	quantity  int
	unitPrice int64
	machine   string
	chip      string
	amount    int64
	loanTerm  string
}

func newActCmd(apiBase *string) *cobra.Command {
	var f actFlags
	cmd := &cobra.Command{
		Use:   "act <kind>",
		Short: "Take a decision action for a company",
		Long: "Kinds: buy_materials, input_production, complete_production, hire_worker, hire_salesman, " +
			"buy_machine, buy_attachment, buy_chip, reserve_chip, take_loan, buy_benefit, sell, pass",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := buildActionBody(args[0], f)
			if err != nil {
				return err
			}
			client, sess, err := sessionClient(apiBase)
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := client.ApplyAction(ctx, sess.GameID, body, idem)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{
					GameID:         sess.GameID,
					Body:           body,
					IdempotencyKey: idem,
				})
			}
			renderActionResult(out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&f.company, "company", "c", 0, "company index")
	cmd.Flags().IntVarP(&f.quantity, "qty", "q", 0, "quantity")
	cmd.Flags().Int64Var(&f.unitPrice, "price", 0, "unit price for materials or sales")
	cmd.Flags().StringVar(&f.machine, "machine", "", "machine type: small or large")
	cmd.Flags().StringVar(&f.chip, "chip", "", "chip kind: research, education, advertising, computer, insurance")
	cmd.Flags().Int64Var(&f.amount, "amount", 0, "loan amount")
	cmd.Flags().StringVar(&f.loanTerm, "term", "", "loan term: long or short")
	return cmd
}

// buildActionBody validates the flags locally so a queued command is well formed.
func buildActionBody(kindArg string, f actFlags) (map[string]any, error) {
	kind, err := game.ParseActionKind(kindArg)
	if err != nil {
		return nil, err
	}
	if f.company < 0 {
		return nil, fmt.Errorf("invalid company index %d", f.company)
	}
	body := map[string]any{
		"company": f.company,
		"kind":    string(kind),
	}
	if f.quantity > 0 {
		body["quantity"] = f.quantity
	}
	if f.unitPrice > 0 {
		body["unit_price"] = f.unitPrice
	}
	if strings.TrimSpace(f.machine) != "" {
		m, err := game.ParseMachineType(f.machine)
		if err != nil {
			return nil, err
		}
		body["machine"] = string(m)
	}
	if strings.TrimSpace(f.chip) != "" {
		c, err := game.ParseChipKind(f.chip)
		if err != nil {
			return nil, err
		}
		body["chip"] = string(c)
	}
	if f.amount > 0 {
		body["amount"] = f.amount
	}
	if term := strings.ToLower(strings.TrimSpace(f.loanTerm)); term != "" {
		if term != "long" && term != "short" {
			return nil, fmt.Errorf("unknown loan term: %s", f.loanTerm)
		}
		body["loan_term"] = term
	}
	return body, nil
}

func newAuctionCmd(apiBase *string) *cobra.Command {
	var (
		market   game.Market
		bidSpecs []string
	)
	cmd := &cobra.Command{
		Use:   "auction",
		Short: "Resolve a sale event from sealed bids",
		Example: "  mg auction --market Tokyo --max-price 40 --demand 4 " +
			"--bid 0:32:3 --bid 1:30:2",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(bidSpecs) == 0 {
				return errors.New("at least one --bid is required")
			}
			bids := make([]game.BidInput, 0, len(bidSpecs))
			for _, spec := range bidSpecs {
				b, err := parseBid(spec)
				if err != nil {
					return err
				}
				bids = append(bids, b)
			}
			client, sess, err := sessionClient(apiBase)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := client.RunAuction(ctx, sess.GameID, market, bids, uuid.NewString())
			if err != nil {
				return err
			}
			renderAuction(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&market.Name, "market", "market", "market name")
	cmd.Flags().Int64Var(&market.MaxPrice, "max-price", 0, "highest display price the market accepts (0 = no cap)")
	cmd.Flags().IntVar(&market.Demand, "demand", 0, "units the market buys (0 = no cap)")
	cmd.Flags().StringArrayVar(&bidSpecs, "bid", nil, "company:display_price:quantity")
	return cmd
}

// parseBid reads a "company:price:quantity" bid.
func parseBid(spec string) (game.BidInput, error) {
	parts := strings.Split(strings.TrimSpace(spec), ":")
	if len(parts) != 3 {
		return game.BidInput{}, fmt.Errorf("invalid bid %q, want company:price:quantity", spec)
	}
	company, err := strconv.Atoi(parts[0])
	if err != nil || company < 0 {
		return game.BidInput{}, fmt.Errorf("invalid bid company %q", parts[0])
	}
	price, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || price <= 0 {
		return game.BidInput{}, fmt.Errorf("invalid bid price %q", parts[1])
	}
	qty, err := strconv.Atoi(parts[2])
	if err != nil || qty <= 0 {
		return game.BidInput{}, fmt.Errorf("invalid bid quantity %q", parts[2])
	}
	return game.BidInput{Company: company, DisplayPrice: price, Quantity: qty}, nil
}

func newCloseCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the period and settle the books",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, sess, err := sessionClient(apiBase)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			reports, err := client.ClosePeriod(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderCloseReports(reports)
			return nil
		},
	}
}

func newActionsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "actions [company]",
		Short: "List the decision actions a company can take now",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			company, err := int64FromArgOrPrompt(args, 0, "Company index")
			if err != nil {
				return err
			}
			client, sess, err := sessionClient(apiBase)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			actions, err := client.AvailableActions(ctx, sess.GameID, int(company))
			if err != nil {
				return err
			}
			renderActions(actions)
			return nil
		},
	}
}

func newHistoryCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show every closed period",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, sess, err := sessionClient(apiBase)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			closes, err := client.History(ctx, sess.GameID)
			if err != nil {
				return err
			}
			if len(closes) == 0 {
				printInfo("No period closed yet.")
				return nil
			}
			for _, reports := range closes {
				renderCloseReports(reports)
			}
			return nil
		},
	}
}

func newSyncCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay actions queued while the server was unreachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, sess, err := sessionClient(apiBase)
			if err != nil {
				return err
			}
			queued, err := syncq.Split(sess.GameID)
			if err != nil {
				return err
			}
			if len(queued) == 0 {
				printInfo("Sync queue is empty.")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			results, err := client.SyncReplay(ctx, sess.GameID, syncq.Wire(queued))
			if err != nil {
				for _, q := range queued {
					if qerr := syncq.Push(q); qerr != nil {
						return qerr
					}
				}
				return fmt.Errorf("sync failed, %d commands kept in queue: %w", len(queued), err)
			}
			renderReplay(results)
			return nil
		},
	}
}

func newRulesCmd(apiBase *string) *cobra.Command {
	var savePath string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the server's rule constants as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			rules, err := newClient(apiBase).Rules(ctx)
			if err != nil {
				return err
			}
			if savePath != "" {
				if err := config.SaveRules(savePath, rules); err != nil {
					return err
				}
				printSuccess("Rules written to " + savePath)
				return nil
			}
			raw, err := yaml.Marshal(rules)
			if err != nil {
				return err
			}
			accent.Println("\n== RULES ==")
			fmt.Print(string(raw))
			return nil
		},
	}
	cmd.Flags().StringVar(&savePath, "save", "", "write the rules to a YAML file instead of printing")
	return cmd
}

// queueOnNetworkError keeps an action for `mg sync` when the server could not
// be reached. Answers from the server are returned unchanged.
func queueOnNetworkError(err error, q syncq.Command) error {
	if err == nil {
		return nil
	}
	if isAPIStructuredError(err) {
		return err
	}
	if qerr := syncq.Push(q); qerr != nil {
		return fmt.Errorf("request failed and queueing failed: %v: %w", qerr, err)
	}
	printWarn(fmt.Sprintf("Server unreachable, action queued (%s). Run `mg sync` later.", q.IdempotencyKey))
	return nil
}

func isAPIStructuredError(err error) bool {
	var apiErr *cl.APIError
	return errors.As(err, &apiErr)
}

func int64FromArgOrPrompt(args []string, idx int, label string) (int64, error) {
	if len(args) > idx {
		v, err := strconv.ParseInt(strings.TrimSpace(args[idx]), 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid %s", strings.ToLower(label))
		}
		return v, nil
	}
	return promptInt64(label, 0)
}

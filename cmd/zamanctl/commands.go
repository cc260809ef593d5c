package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"zaman/internal/budget"
	"zaman/internal/core"
	"zaman/internal/goals"
	"zaman/internal/importer"
	"zaman/internal/invest"
	"zaman/internal/spending"
)

// cli carries the flags shared by every subcommand.
type cli struct {
	jsonOut bool
	now     func() time.Time
	rand    invest.RandSource
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&cli{now: time.Now})
}

func newRootCmdWith(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "zamanctl",
		Short:         "Zaman savings and budgeting calculators",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		c.goalCmd(),
		c.planCmd(),
		c.allocateCmd(),
		c.investCmd(),
		c.analyzeCmd(),
	)
	return root
}

func (c *cli) print(w io.Writer, v any, text func(io.Writer)) error {
	if c.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func (c *cli) goalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goal <text>",
		Short: "Extract a savings goal from a free-form request",
		Example: `  zamanctl goal "хочу накопить 2 млн за 12 месяцев"
  zamanctl goal "на квартиру 15 млн к 2030-06"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, found := goals.Extract(strings.Join(args, " "))
			out := struct {
				Found bool           `json:"found"`
				Goal  *core.Goal     `json:"goal,omitempty"`
				Plan  *core.GoalPlan `json:"plan,omitempty"`
			}{Found: found}
			if found {
				out.Goal = &g
				if g.Amount > 0 {
					if p, err := goals.Plan(g, c.now()); err == nil {
						out.Plan = &p
					}
				}
			}
			return c.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				if !found {
					fmt.Fprintln(w, "No goal found.")
					return
				}
				fmt.Fprintf(w, "Amount:  %s\n", core.FormatTenge(g.Amount))
				if g.Months > 0 {
					fmt.Fprintf(w, "Term:    %d months\n", g.Months)
				}
				if g.DateISO != "" {
					fmt.Fprintf(w, "Date:    %s\n", g.DateISO)
				}
				if g.Purpose != "" {
					fmt.Fprintf(w, "Purpose: %s\n", g.Purpose)
				}
				if out.Plan != nil {
					fmt.Fprintf(w, "Monthly: %s over %d months\n", core.FormatTenge(out.Plan.MonthlyPlan), out.Plan.Months)
				} else {
					fmt.Fprintln(w, "Monthly: needs an amount and a term or date")
				}
			})
		},
	}
}

func (c *cli) planCmd() *cobra.Command {
	var (
		months int
		date   string
	)
	cmd := &cobra.Command{
		Use:   "plan <amount>",
		Short: "Compute the monthly contribution for a goal",
		Example: `  zamanctl plan 2000000 --months 12
  zamanctl plan 1300000 --date 2026-01-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			if months == 0 && date == "" {
				return errors.New("either --months or --date is required")
			}
			g := core.Goal{Amount: amount, Months: months, DateISO: date}
			p, err := goals.Plan(g, c.now())
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), p, func(w io.Writer) {
				fmt.Fprintf(w, "Save %s per month for %d months\n", core.FormatTenge(p.MonthlyPlan), p.Months)
			})
		},
	}
	cmd.Flags().IntVarP(&months, "months", "m", 0, "term in months")
	cmd.Flags().StringVarP(&date, "date", "d", "", "target date, YYYY-MM-DD")
	return cmd
}

func (c *cli) allocateCmd() *cobra.Command {
	var envelopesFile string
	cmd := &cobra.Command{
		Use:   "allocate <salary>",
		Short: "Split a salary into spending envelopes",
		Long: `Split a salary into spending envelopes. Without --envelopes the stock
set is used: housing 30%, food 20%, transport 10%, utilities 10% and
sadaqah 2.5%.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			salary, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			if salary <= 0 {
				return errors.New("salary must be positive")
			}
			var envelopes []budget.Envelope
			if envelopesFile != "" {
				data, err := os.ReadFile(envelopesFile)
				if err != nil {
					return fmt.Errorf("read envelopes: %w", err)
				}
				if err := json.Unmarshal(data, &envelopes); err != nil {
					return fmt.Errorf("parse envelopes: %w", err)
				}
			}
			plan := budget.AllocateSalary(salary, envelopes)
			return c.print(cmd.OutOrStdout(), plan, func(w io.Writer) {
				keys := make([]string, 0, len(plan.Envelopes))
				for k := range plan.Envelopes {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					e := plan.Envelopes[k]
					fmt.Fprintf(w, "%-24s %s\n", e.Title, core.FormatTenge(e.Allocated))
				}
				fmt.Fprintf(w, "%-24s %s\n", "Savings", core.FormatTenge(plan.ToSavings))
			})
		},
	}
	cmd.Flags().StringVarP(&envelopesFile, "envelopes", "e", "", "JSON file with custom envelopes")
	return cmd
}

func (c *cli) investCmd() *cobra.Command {
	var instrument string
	cmd := &cobra.Command{
		Use:   "invest <amount>",
		Short: "Simulate a one-year investment",
		Long: `Simulate a one-year investment. The annual return is drawn from the
instrument's range; the wakala fee is taken up front.

Instruments: sukuk, halal_equities, gold, crypto.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			res, err := invest.NewSimulator(c.rand).Simulate(amount, invest.Instrument(instrument))
			if err != nil {
				return fmt.Errorf("simulate %s: %w", instrument, err)
			}
			return c.print(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "Instrument: %s\n", res.Instrument)
				fmt.Fprintf(w, "Fee:        %s\n", core.FormatTenge(res.WakalaFee))
				fmt.Fprintf(w, "Return:     %s (%.2f%%)\n", core.FormatTenge(res.Return), res.ReturnPercent)
				fmt.Fprintf(w, "Projected:  %s\n", core.FormatTenge(res.Projected))
			})
		},
	}
	cmd.Flags().StringVarP(&instrument, "instrument", "i", string(invest.Sukuk), "instrument to simulate")
	return cmd
}

func (c *cli) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file.csv|file.ofx>",
		Short: "Import a bank statement and summarize spending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := importer.Import(filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			analysis := spending.Analyze(result.Transactions, result.HasCategoryColumn)
			return c.print(cmd.OutOrStdout(), analysis, func(w io.Writer) {
				fmt.Fprintf(w, "Transactions: %d\n", len(result.Transactions))
				fmt.Fprintf(w, "Spent:        %.2f ₸\n", analysis.TotalSpending)

				cats := make([]string, 0, len(analysis.TotalsByCategory))
				for k := range analysis.TotalsByCategory {
					cats = append(cats, k)
				}
				sort.Slice(cats, func(i, j int) bool {
					return analysis.TotalsByCategory[cats[i]] > analysis.TotalsByCategory[cats[j]]
				})
				for _, k := range cats {
					fmt.Fprintf(w, "  %-20s %.2f ₸\n", k, analysis.TotalsByCategory[k])
				}
				for _, a := range analysis.Advices {
					fmt.Fprintf(w, "* %s\n", a)
				}
			})
		},
	}
}

// parseAmount accepts whole tenge with optional space or underscore
// separators, e.g. "2_000_000".
func parseAmount(s string) (int64, error) {
	clean := strings.NewReplacer(" ", "", "_", "").Replace(s)
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return n, nil
}

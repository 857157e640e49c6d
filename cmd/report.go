package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lumina/internal/currency"
	"github.com/Tiliavir/lumina/internal/views"
)

var (
	reportFormat string
	reportIn     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show expense totals per currency",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
	reportCmd.Flags().StringVar(&reportIn, "in", "", "Also show a grand total converted to this currency (approximate)")
}

// reportData is the JSON shape of the report.
type reportData struct {
	Totals     []views.Total `json:"totals"`
	GrandTotal *grandTotal   `json:"grand_total,omitempty"`
}

type grandTotal struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	return writeReport(cmd.OutOrStdout(), buildReport(views.ExpenseTotals(a.store.Snapshot().Expenses), reportIn), reportFormat)
}

// buildReport adds an approximate grand total in target when target is set.
// Totals already in target are taken as-is.
func buildReport(totals []views.Total, target string) reportData {
	r := reportData{Totals: totals}
	if target == "" {
		return r
	}
	target = strings.ToUpper(target)
	g := &grandTotal{Currency: target}
	for _, t := range totals {
		if t.Currency == target {
			g.Amount += t.Amount
			continue
		}
		g.Amount += currency.Convert(t.Amount, t.Currency, target)
	}
	r.GrandTotal = g
	return r
}

func writeReport(w io.Writer, r reportData, format string) error {
	switch format {
	case "csv":
		fmt.Fprintln(w, "currency,amount,count")
		for _, t := range r.Totals {
			fmt.Fprintf(w, "%s,%.2f,%d\n", csvEscape(t.Currency), t.Amount, t.Count)
		}
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	default: // md
		fmt.Fprintln(w, "Expenses")
		fmt.Fprintln(w, "--------------------------------")
		if len(r.Totals) == 0 {
			fmt.Fprintln(w, "No expenses recorded.")
		}
		for _, t := range r.Totals {
			fmt.Fprintf(w, "%-8s%14.2f  (%d)\n", t.Currency, t.Amount, t.Count)
		}
		if r.GrandTotal != nil {
			fmt.Fprintln(w, "--------------------------------")
			fmt.Fprintf(w, "%-8s%14.2f  ≈ total\n", r.GrandTotal.Currency, r.GrandTotal.Amount)
		}
	}
	return nil
}

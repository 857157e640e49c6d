package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lumina/internal/model"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export expenses to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	expenses := a.store.Snapshot().Expenses
	out := cmd.OutOrStdout()
	switch exportFormat {
	case "json":
		if expenses == nil {
			expenses = []model.Expense{}
		}
		data, err := json.MarshalIndent(expenses, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "md":
		printExpenses(out, expenses)
	default: // csv
		printCSV(out, expenses)
	}
	return nil
}

func printCSV(w io.Writer, expenses []model.Expense) {
	fmt.Fprintln(w, "date,item,amount,currency,method,payer,id")
	for _, e := range expenses {
		fmt.Fprintf(w, "%s,%s,%.2f,%s,%s,%s,%s\n",
			csvEscape(e.Date),
			csvEscape(e.Item),
			e.Amount,
			csvEscape(e.Currency),
			csvEscape(string(e.Method)),
			csvEscape(e.Payer),
			csvEscape(e.ID),
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

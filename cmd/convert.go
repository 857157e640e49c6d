package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lumina/internal/currency"
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount> <from> <to>",
	Short: "Convert an amount between currencies (approximate, offline rates)",
	Long: `convert uses a small built-in table of rates. Pairs not in the table,
including same-currency pairs, use a fixed fallback multiplier of 1.1.`,
	Args: cobra.ExactArgs(3),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("invalid amount %q", args[0]))
	}
	from, to := strings.ToUpper(args[1]), strings.ToUpper(args[2])
	rate, known := currency.Rate(from, to)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%.2f %s = %.2f %s\n", amount, from, currency.Convert(amount, from, to), to)
	if !known {
		fmt.Fprintf(out, "(no rate for %s_%s, used fallback %.2f; known pairs: %s)\n",
			from, to, rate, strings.Join(currency.Pairs(), ", "))
	}
	return nil
}

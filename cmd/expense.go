package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lumina/internal/model"
	"github.com/Tiliavir/lumina/internal/tripstore"
)

var (
	expenseCurrency string
	expenseMethod   string
	expensePayer    string
)

var expenseCmd = &cobra.Command{
	Use:     "expense",
	Aliases: []string{"exp"},
	Short:   "Track trip spending",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add <item> <amount>",
	Short: "Record an expense dated today",
	Args:  cobra.ExactArgs(2),
	RunE:  runExpenseAdd,
}

var expenseRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an expense",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpenseRm,
}

var expenseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses, newest first",
	Args:  cobra.NoArgs,
	RunE:  runExpenseList,
}

func init() {
	expenseAddCmd.Flags().StringVar(&expenseCurrency, "currency", "", "Currency code (default from config, USD)")
	expenseAddCmd.Flags().StringVar(&expenseMethod, "method", "card", "Payment method: cash or card")
	expenseAddCmd.Flags().StringVar(&expensePayer, "payer", "Me", "Who paid")
	expenseCmd.AddCommand(expenseAddCmd, expenseRmCmd, expenseListCmd)
}

func runExpenseAdd(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("invalid amount %q", args[1]))
	}
	method, err := model.ParsePaymentMethod(expenseMethod)
	if err != nil {
		return withCode(exitUsage, err)
	}

	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	e, ok, err := a.store.AddExpense(tripstore.ExpenseInput{
		Item:     args[0],
		Amount:   amount,
		Currency: expenseCurrency,
		Method:   method,
		Payer:    expensePayer,
	})
	if err != nil {
		return storageErr(err)
	}
	if !ok {
		return withCode(exitUsage, errors.New("expense needs an item and a positive amount"))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %.2f %s (%s, %s)  [%s]\n", e.Item, e.Amount, e.Currency, e.Method, e.Payer, e.ID)
	return nil
}

func runExpenseRm(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	found, err := a.store.RemoveExpense(args[0])
	if err != nil {
		return storageErr(err)
	}
	if !found {
		return withCode(exitUsage, fmt.Errorf("no expense with id %s", args[0]))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Expense deleted.")
	return nil
}

func runExpenseList(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	printExpenses(cmd.OutOrStdout(), a.store.Snapshot().Expenses)
	return nil
}

// printExpenses prints one line per expense in stored (newest-first) order.
func printExpenses(w io.Writer, expenses []model.Expense) {
	if len(expenses) == 0 {
		fmt.Fprintln(w, "No expenses recorded.")
		return
	}
	for _, e := range expenses {
		fmt.Fprintf(w, "%-10s  %-24s %10.2f %s  %-11s  %s  [%s]\n",
			e.Date, e.Item, e.Amount, e.Currency, e.Method, e.Payer, e.ID)
	}
}

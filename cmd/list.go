package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lumina/internal/model"
	"github.com/Tiliavir/lumina/internal/views"
)

// listCmds builds the prep, todo and shopping commands. All three share one
// implementation parameterised by list name.
func listCmds() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(model.ListNames))
	for _, name := range model.ListNames {
		cmds = append(cmds, newListCmd(name))
	}
	return cmds
}

func newListCmd(name model.ListName) *cobra.Command {
	parent := &cobra.Command{
		Use:   string(name),
		Short: fmt.Sprintf("Manage the %s list", strings.ToLower(name.Title())),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListShow(cmd, name)
		},
	}

	var at string
	add := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add an item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListAdd(cmd, name, strings.Join(args, " "), at)
		},
	}
	add.Flags().StringVar(&at, "time", "", fmt.Sprintf("Time as HH:MM (default %s)", name.DefaultTime()))

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark an item done or not done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListToggle(cmd, name, args[0])
		},
	}
	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListRm(cmd, name, args[0])
		},
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the list with AI suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListShow(cmd, name)
		},
	}
	parent.AddCommand(add, toggle, rm, show)
	return parent
}

func runListAdd(cmd *cobra.Command, name model.ListName, text, at string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	item, ok, err := a.store.AddListItem(name, text, at)
	if err != nil {
		return storageErr(err)
	}
	if !ok {
		return withCode(exitUsage, errors.New("item needs text and a valid HH:MM time"))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added to %s: %s  %s  [%s]\n", name.Title(), item.Time, item.Text, item.ID)
	return nil
}

func runListToggle(cmd *cobra.Command, name model.ListName, id string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	found, err := a.store.ToggleListItem(name, id)
	if err != nil {
		return storageErr(err)
	}
	if !found {
		return withCode(exitUsage, fmt.Errorf("no %s item with id %s", name, id))
	}
	st := a.store.Snapshot()
	item, _ := st.List(name).Find(id)
	state := "open"
	if item.Completed {
		state = "done"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", item.Text, state)
	return nil
}

func runListRm(cmd *cobra.Command, name model.ListName, id string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	found, err := a.store.RemoveListItem(name, id)
	if err != nil {
		return storageErr(err)
	}
	if !found {
		return withCode(exitUsage, fmt.Errorf("no %s item with id %s", name, id))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Item deleted.")
	return nil
}

func runListShow(cmd *cobra.Command, name model.ListName) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	printRows(cmd.OutOrStdout(), name, views.CombinedList(a.store.Snapshot(), name))
	return nil
}

// printRows renders user items, then AI suggestions under their own heading.
func printRows(w io.Writer, name model.ListName, rows []views.Row) {
	fmt.Fprintln(w, name.Title())
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	suggested := false
	for _, r := range rows {
		if r.Suggested {
			if !suggested {
				fmt.Fprintln(w, "Suggested:")
				suggested = true
			}
			fmt.Fprintf(w, "  *  %s\n", r.Text)
			continue
		}
		mark := " "
		if r.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %s  %s  [%s]\n", mark, r.Time, r.Text, r.ID)
	}
}

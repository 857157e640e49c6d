package cmd

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/lumina/internal/views"
)

var shareCopy bool

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Print a shareable trip summary",
	Args:  cobra.NoArgs,
	RunE:  runShare,
}

func init() {
	shareCmd.Flags().BoolVar(&shareCopy, "copy", false, "Copy the summary to the clipboard")
}

func runShare(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	st := a.store.Snapshot()
	title, text := views.ShareTitle(st), views.ShareText(st)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title)
	fmt.Fprintln(out)
	fmt.Fprintln(out, text)

	if shareCopy {
		if err := clipboard.WriteAll(title + "\n\n" + text); err != nil {
			return withCode(exitUsage, fmt.Errorf("copying to clipboard: %w", err))
		}
		fmt.Fprintln(out, "Plan copied to clipboard!")
	}
	return nil
}

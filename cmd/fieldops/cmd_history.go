package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd lists recent journal entries, newest first.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync operations from the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if a.journal == nil {
			return fmt.Errorf("journal unavailable")
		}
		entries, err := a.journal.Recent(historyLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tOP\tOK\tDETAIL")
		for _, e := range entries {
			ok := "ok"
			if !e.OK {
				ok = "FAIL"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Op, ok, e.Detail)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fieldops/internal/types"
)

var (
	exportOut   string
	exportScope string
)

// importCmd bulk-creates activities from a schedule CSV file.
var importCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Bulk-create activities from a schedule CSV",
	Long: `Decodes a schedule CSV (required columns: promoterId, date, objective) and
creates each row in the remote store, in file order. Rows that fail are
skipped; one refresh follows the whole batch. A field promoter may only
import rows they own - one foreign row rejects the entire file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		session, err := a.session()
		if err != nil {
			return err
		}

		blob, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		result, err := a.engine.ImportCSV(cmd.Context(), string(blob), session)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d activities (%d skipped)\n", result.Created, result.Skipped)
		return nil
	},
}

// exportCmd writes the caller's visible activities as a schedule CSV.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export visible activities as a schedule CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		session, err := a.session()
		if err != nil {
			return err
		}

		blob := a.engine.ExportCSV(session, exportScope)
		if exportOut == "" {
			fmt.Print(blob)
			return nil
		}
		if err := os.WriteFile(exportOut, []byte(blob), 0644); err != nil {
			return err
		}
		fmt.Println("Wrote", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportScope, "promoter", types.AdminScopeAll,
		"admin only: restrict the export to one promoter id")
}

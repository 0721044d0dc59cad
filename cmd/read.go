package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geoconv/internal/convert"
	"github.com/sells-group/geoconv/internal/table"
)

var readCmd = &cobra.Command{
	Use:   "read <source>",
	Short: "Parse and validate GeoJSON or TopoJSON",
	Long: `Reads a GeoJSON or TopoJSON source (inline text, file path, or URL),
validates its structure, and prints the normalized GeoJSON. Other vector
formats are converted on the way in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		asTable, _ := cmd.Flags().GetBool("table")

		engine := newEngine()
		res, err := engine.Read(ctx, args[0], convert.ReadOptions{Table: asTable})
		if err != nil {
			return eris.Wrap(err, "read")
		}

		if asTable {
			printTable(res.Table)
			return nil
		}

		fmt.Println(string(res.Text))
		return nil
	},
}

func printTable(t *table.Table) {
	fmt.Println(strings.Join(t.Columns(), "\t"))
	for i := range t.Len() {
		row := t.Row(i)
		cells := make([]string, 0, len(t.Columns()))
		for _, c := range t.Columns() {
			cells = append(cells, fmt.Sprint(row[c]))
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
}

func init() {
	readCmd.Flags().Bool("table", false, "flatten point features to a table")
	rootCmd.AddCommand(readCmd)
}

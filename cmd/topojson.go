package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geoconv/internal/convert"
)

var topojsonCmd = &cobra.Command{
	Use:   "topojson <input>",
	Short: "Convert an input to TopoJSON",
	Long: `Converts a spatial input to TopoJSON via the external topology tools.
Equivalent to convert --format topojson for a single input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		output, _ := cmd.Flags().GetString("output")

		engine := newEngine()
		res, err := engine.Convert(ctx, args[0], convert.Options{
			Method: cfg.Convert.Method,
			Format: convert.FormatTopoJSON,
			Dest:   output,
		})
		if err != nil {
			return eris.Wrap(err, "topojson")
		}

		if res.Path != "" {
			fmt.Println(res.Path)
			return nil
		}
		fmt.Println(string(res.Text))
		return nil
	},
}

func init() {
	topojsonCmd.Flags().StringP("output", "o", "", "output file path")
	rootCmd.AddCommand(topojsonCmd)
}

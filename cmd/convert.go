package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geoconv/internal/convert"
	"github.com/sells-group/geoconv/internal/igv"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input...>",
	Short: "Convert spatial files to GeoJSON or TopoJSON",
	Long: `Converts one or more inputs (CSV/XLSX tables, shapefiles, KML, GML,
GeoJSON, TopoJSON, local paths or URLs) to GeoJSON or TopoJSON files.

With --parse and no --output, prints the result to stdout instead of
writing files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "convert"))

		opts, err := convertOptions(cmd)
		if err != nil {
			return err
		}

		engine := newEngine()

		// Single input without an output directory converts in memory and
		// prints to stdout.
		if len(args) == 1 && opts.Dest == "" {
			res, err := engine.Convert(ctx, args[0], opts)
			if err != nil {
				return eris.Wrap(err, "convert")
			}
			if opts.Table {
				printTable(res.Table)
				return nil
			}
			fmt.Println(string(res.Text))
			return nil
		}

		if opts.Dest == "" {
			opts.Dest = cfg.Convert.OutputDir
			if opts.Dest == "" {
				opts.Dest = "."
			}
		}

		results := engine.ConvertFiles(ctx, args, opts, cfg.Convert.Concurrency)

		var failed int
		for _, r := range results {
			if r.Err != nil {
				failed++
				log.Error("conversion failed",
					zap.String("input", r.Input),
					zap.Error(r.Err),
				)
				continue
			}
			fmt.Println(r.Result.Path)
		}

		if failed > 0 {
			return eris.Errorf("convert: %d of %d inputs failed", failed, len(results))
		}
		return nil
	},
}

// convertOptions assembles conversion options from flags and config.
func convertOptions(cmd *cobra.Command) (convert.Options, error) {
	geometry, _ := cmd.Flags().GetString("geometry")
	latField, _ := cmd.Flags().GetString("lat")
	lonField, _ := cmd.Flags().GetString("lon")
	groupField, _ := cmd.Flags().GetString("group")
	collection, _ := cmd.Flags().GetString("collection")
	latFirst, _ := cmd.Flags().GetBool("lat-first")
	method, _ := cmd.Flags().GetString("method")
	output, _ := cmd.Flags().GetString("output")
	outFormat, _ := cmd.Flags().GetString("format")
	parse, _ := cmd.Flags().GetBool("parse")
	asTable, _ := cmd.Flags().GetBool("table")

	if method == "" {
		method = cfg.Convert.Method
	}
	if method != convert.MethodLocal && method != convert.MethodWeb {
		return convert.Options{}, eris.Errorf("convert: unknown method %q", method)
	}
	if outFormat != convert.FormatGeoJSON && outFormat != convert.FormatTopoJSON {
		return convert.Options{}, eris.Errorf("convert: unknown format %q", outFormat)
	}

	return convert.Options{
		Options: igv.Options{
			Geometry:       geometry,
			LatField:       latField,
			LonField:       lonField,
			GroupField:     groupField,
			CollectionType: collection,
			LatFirst:       latFirst,
		},
		Method: method,
		Format: outFormat,
		Dest:   output,
		Parse:  parse,
		Table:  asTable,
	}, nil
}

func init() {
	convertCmd.Flags().String("geometry", "", "force point or polygon interpretation")
	convertCmd.Flags().String("lat", "", "latitude column name")
	convertCmd.Flags().String("lon", "", "longitude column name")
	convertCmd.Flags().String("group", "", "group rows into multi-part geometries by this column")
	convertCmd.Flags().String("collection", "", "FeatureCollection or GeometryCollection wrapping")
	convertCmd.Flags().Bool("lat-first", false, "input pairs are latitude first")
	convertCmd.Flags().String("method", "", "conversion method: local or web")
	convertCmd.Flags().StringP("output", "o", "", "output directory")
	convertCmd.Flags().String("format", "geojson", "output format: geojson or topojson")
	convertCmd.Flags().Bool("parse", false, "print the result instead of writing files")
	convertCmd.Flags().Bool("table", false, "print point features as a table instead of writing files")
	rootCmd.AddCommand(convertCmd)
}

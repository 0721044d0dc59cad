package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geoconv/pkg/gist"
)

var publishCmd = &cobra.Command{
	Use:   "publish <file...>",
	Short: "Publish converted files as a gist",
	Long:  "Uploads one or more GeoJSON/TopoJSON files as a GitHub gist and prints the hosted URL.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Gist.Token == "" {
			return eris.New("publish: gist.token is not configured")
		}

		description, _ := cmd.Flags().GetString("description")
		public, _ := cmd.Flags().GetBool("public")

		files := make(map[string]string, len(args))
		for _, path := range args {
			content, err := os.ReadFile(path)
			if err != nil {
				return eris.Wrapf(err, "publish: read %s", path)
			}
			files[filepath.Base(path)] = string(content)
		}

		client := gist.New(cfg.Gist.Token, gist.WithBaseURL(cfg.Gist.BaseURL))
		url, err := client.Publish(ctx, files, description, public)
		if err != nil {
			return eris.Wrap(err, "publish")
		}

		zap.L().Info("published gist",
			zap.String("url", url),
			zap.Int("files", len(files)),
		)
		fmt.Println(url)
		return nil
	},
}

func init() {
	publishCmd.Flags().String("description", "geoconv output", "gist description")
	publishCmd.Flags().Bool("public", false, "create a public gist")
	rootCmd.AddCommand(publishCmd)
}

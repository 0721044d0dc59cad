package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage geoconv configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml with default values",
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat("config.yaml"); err == nil && !force {
			return eris.New("config init: config.yaml already exists, use --force to overwrite")
		}

		content, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "config init: marshal defaults")
		}
		if err := os.WriteFile("config.yaml", content, 0o644); err != nil {
			return eris.Wrap(err, "config init: write config.yaml")
		}

		fmt.Println("wrote config.yaml")
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config.yaml")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

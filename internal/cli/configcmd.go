package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/dettato/internal/config"
	"github.com/lazypower/dettato/internal/responses"
)

var (
	configForce     bool
	configResponses string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		cfg := config.Default()
		if configResponses != "" {
			if err := responses.WriteDefaults(configResponses); err != nil {
				return err
			}
			cfg.Skill.ResponsesFile = configResponses
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configResponses)
		}
		if err := config.Write(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configInitCmd.Flags().StringVar(&configResponses, "responses", "", "Also write the default response wording as YAML to this path")
	configCmd.AddCommand(configInitCmd)
}

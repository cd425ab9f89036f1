package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "dettato",
	Short: "Dictated notes for voice assistants",
	Long: "Dettato is an Alexa skill backend for dictating notes by voice, reading them back " +
		"and mailing them to yourself. Single Go binary, SQLite storage.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.dettato/config.toml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(retentionCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(configCmd)
}

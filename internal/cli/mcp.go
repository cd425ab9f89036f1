package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/lazypower/dettato/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve note and retention tools over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, _, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		return server.ServeStdio(mcptools.NewServer(db, VersionString()))
	},
}

package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/lazypower/dettato/internal/store"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version, build and schema information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dettato %s (commit: %s, built: %s)\n", moduleVersion(), Commit, BuildDate)
		fmt.Fprintf(out, "  note schema: v%d\n", store.LatestSchema())
		fmt.Fprintf(out, "  go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

// moduleVersion prefers the ldflags value and falls back to the module
// version recorded by `go install`.
func moduleVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// VersionString is the short form reported by the health endpoint and the
// MCP server.
func VersionString() string {
	return fmt.Sprintf("%s (%s)", moduleVersion(), Commit)
}

package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("clusterlink version %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
		if rev := vcsRevision(); rev != "" {
			cmd.Printf("commit %s\n", rev)
		}
	},
}

// vcsRevision returns the short commit the binary was built from, if the
// toolchain recorded one.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			return s.Value[:12]
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

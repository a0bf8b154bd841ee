package cli

import (
	"fmt"

	"github.com/lherron/fixq/internal/render"
	"github.com/spf13/cobra"
)

// Build information, set via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Displays version, commit, and build date information for fixqadm.`,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(cmd.Flag("output").Value.String())
	if err != nil {
		return exitError(2, err)
	}
	if format == render.FormatJSON || format == render.FormatYAML {
		info := map[string]string{
			"binary":     "fixqadm",
			"version":    Version,
			"commit":     GitCommit,
			"build_date": BuildDate,
		}
		return render.NewRenderer(cmd.OutOrStdout(), render.Options{Format: format}).Render(info, nil, nil)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "fixqadm version %s\n", Version)
	fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", GitCommit)
	fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", BuildDate)
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/recipebox/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, errors.FromError(err, "E180").Format())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recipebox",
		Short: "Server-driven recipe listing with live favorites",
		Long: `RecipeBox serves the recipe listing of the recipe platform.

Pages are rendered on the server. Favorite controls stay in sync with
the platform API over a live session, and every change is confirmed
with a notification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to recipebox.json or recipebox.yaml")
	rootCmd.SetFlagErrorFunc(usageError)

	rootCmd.AddCommand(
		serveCmd(),
		dbinitCmd(),
		versionCmd(),
	)
	return rootCmd
}

// usageError reports bad flags or arguments as E180.
func usageError(cmd *cobra.Command, err error) error {
	return errors.New("E180").
		WithDetail(err.Error()).
		WithSuggestion(fmt.Sprintf("Run '%s --help' for usage.", cmd.CommandPath())).
		Wrap(err)
}

// noArgs rejects positional arguments with a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError(cmd, err)
	}
	return nil
}

// Command pmportal is a terminal project management dashboard. Run without
// arguments it opens the interactive portal for the current directory; the
// subcommands perform single store operations for scripting.
package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/pm-portal/internal/nav"
	"github.com/kingrea/pm-portal/internal/tui"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// rootFlags are shared by every command.
type rootFlags struct {
	dir        string
	configFile string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:   "pmportal",
		Short: "Terminal dashboard for tracking project discovery and planning",
		Long: `pmportal tracks projects through five planning sections: product
discovery, customer discovery, user journey mapping, tech stack and dev
schedule. State lives in the .pmportal directory of the workspace.

Examples:
  # Open the dashboard for the current directory
  pmportal

  # Use another workspace
  pmportal --dir ~/work/acme`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPortal(cmd, flags)
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dir, "dir", "", "Workspace directory (defaults to the current directory)")
	pf.StringVar(&flags.configFile, "config", "", "Config file (defaults to <dir>/.pmportal/config.yaml)")

	root.AddCommand(
		newListCmd(&flags),
		newCreateCmd(&flags),
		newDeleteCmd(&flags),
		newCompleteCmd(&flags),
		newExportCmd(&flags),
		newSectionsCmd(),
	)
	return root
}

func runPortal(cmd *cobra.Command, flags rootFlags) error {
	ctx := cmd.Context()
	sess, err := openSession(ctx, flags)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.journal.Info("Session opened · %d projects", len(sess.store.Snapshot()))
	app := tui.NewApp(nav.NewRouter(sess.store),
		tui.WithConfig(sess.cfg),
		tui.WithJournal(sess.journal),
		tui.WithLogger(sess.logger),
		tui.WithContext(ctx),
	)
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if sess.cfg.Portal.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(app, opts...).Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	sess.journal.Info("Session closed")
	return nil
}

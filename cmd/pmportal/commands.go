package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrea/pm-portal/internal/catalog"
	"github.com/kingrea/pm-portal/internal/report"
	"github.com/kingrea/pm-portal/internal/store"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects and their progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			projects := sess.store.Snapshot()
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPROGRESS\tDESCRIPTION")
			for _, p := range projects {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Progress(), p.Description)
			}
			return w.Flush()
		},
	}
}

func newCreateCmd(flags *rootFlags) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Long: `Create a project with all five sections open.

Examples:
  pmportal create --name "Partner API" --description "Self-serve onboarding for partners"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			p, err := sess.store.Create(cmd.Context(), name, description)
			if errors.Is(err, store.ErrInvalidProject) {
				return fmt.Errorf("name and description must not be blank")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s\n", p.ID, p.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Project name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Project description (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			sess, err := openSession(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			removed, err := sess.store.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("project %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %d\n", id)
			return nil
		},
	}
}

func newCompleteCmd(flags *rootFlags) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "complete <project-id> <section>",
		Short: "Mark a project section complete",
		Long: `Mark a project section complete, or open again with --undo. The section
is its number (1-5) or its title; see "pmportal sections".

Examples:
  pmportal complete 1 3
  pmportal complete 1 "Tech Stack Canvas" --undo`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			section, err := parseSection(args[1])
			if err != nil {
				return err
			}
			sess, err := openSession(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			if _, ok := sess.store.Project(id); !ok {
				return fmt.Errorf("project %d not found", id)
			}
			if _, err := sess.store.SetSectionCompletion(cmd.Context(), id, section, !undo); err != nil {
				return err
			}
			p, _ := sess.store.Project(id)
			state := "complete"
			if undo {
				state = "open"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s is %s (%s)\n", p.Name, catalog.Title(section), state, p.Progress())
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "Mark the section as not complete")
	return cmd
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var out string
	var check bool
	cmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Export a project as a markdown report",
		Long: `Write a markdown report with YAML frontmatter for a project. Reports go to
.pmportal/reports unless --out is given. With --check nothing is written; the
command reports whether an existing export still matches the project.

Examples:
  pmportal export 1
  pmportal export 1 --check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			sess, err := openSession(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			p, ok := sess.store.Project(id)
			if !ok {
				return fmt.Errorf("project %d not found", id)
			}
			path := out
			if path == "" {
				path = filepath.Join(sess.cfg.ReportsDir(), report.FileName(p))
			}
			res, err := report.Check(path, p)
			if err != nil {
				return err
			}
			if check {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, res.State)
				if res.State != report.StateCurrent {
					return fmt.Errorf("export is %s", res.State)
				}
				return nil
			}
			if res.State == report.StateCurrent {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", path)
				return nil
			}
			if err := report.Write(path, p, time.Now()); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			sess.journal.Info("Exported %s to %s", p.Name, path)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", p.Name, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (defaults to .pmportal/reports/<id>-<name>.md)")
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether the existing export is current")
	return cmd
}

func newSectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "Print the section catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSECTION\tSUMMARY")
			for _, e := range catalog.All() {
				fmt.Fprintf(w, "%d\t%s\t%s\n", e.ID, e.Title, e.Summary)
			}
			return w.Flush()
		},
	}
}

func parseProjectID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid project id %q", arg)
	}
	return id, nil
}

// parseSection accepts a catalog id or a case-insensitive title.
func parseSection(arg string) (catalog.SectionID, error) {
	arg = strings.TrimSpace(arg)
	if n, err := strconv.Atoi(arg); err == nil {
		id := catalog.SectionID(n)
		if !catalog.Valid(id) {
			return 0, fmt.Errorf("unknown section %d (expected 1-%d)", n, catalog.Count())
		}
		return id, nil
	}
	for _, e := range catalog.All() {
		if strings.EqualFold(e.Title, arg) {
			return e.ID, nil
		}
	}
	return 0, fmt.Errorf("unknown section %q", arg)
}

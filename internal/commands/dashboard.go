package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/budgetwise-dev/budgetwise/internal/router"
	"github.com/budgetwise-dev/budgetwise/internal/screens"
)

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard summary and spending trends",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			v, err := a.loader.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			return a.renderer().Dashboard(v)
		}),
	}
}

func newReportCommand(a *app) *cobra.Command {
	var month, out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Download the monthly PDF report",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			p, err := a.period(month)
			if err != nil {
				return err
			}
			data, err := a.loader.Report(cmd.Context(), p)
			a.record(cmd.Context(), "report", p.String(), err)
			if err != nil {
				return err
			}
			if out == "" {
				out = screens.ReportFilename(p)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", out, len(data))
			return nil
		}),
	}

	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default BudgetWise_Report_YYYY-MM.pdf)")

	return cmd
}

func newNavCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "nav [path]",
		Short: "Show the screen table and navigation bar for a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			path := router.PathDashboard
			if len(args) > 0 {
				path = args[0]
			}
			rt, ok := a.routes.Match(path)
			if !ok {
				fmt.Fprintf(a.out, "%s: no such screen\n\n", router.Clean(path))
			} else {
				lock := ""
				if rt.Protected {
					lock = " (login required)"
				}
				fmt.Fprintf(a.out, "%s -> %s%s\n\n", rt.Path, rt.Title, lock)
			}
			return a.renderer().Nav(a.routes, rt.Path)
		}),
	}
}

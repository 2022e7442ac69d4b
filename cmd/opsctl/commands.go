package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyjia/brokerage-backoffice/internal/container"
	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
	"github.com/garyjia/brokerage-backoffice/internal/domain/shift"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := container.ProvideDatabase(&a.cfg.Database, a.logger)
			if err != nil {
				return err
			}
			defer bundle.DB.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", bundle.Applied)
			return nil
		},
	}
}

func newRemindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send reminders for stalled checklists once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.start()
			if err != nil {
				return err
			}
			defer c.Close()

			sent, err := c.Services().Notification.SendIncompleteReminders(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d reminder(s)\n", sent)
			return nil
		},
	}
}

func newDeadlineAlertsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deadline-alerts",
		Short: "Alert on listing agreements nearing their REINS registration deadline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.start()
			if err != nil {
				return err
			}
			defer c.Close()

			sent, err := c.Services().Notification.SendAgreementDeadlineAlerts(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d deadline alert(s)\n", sent)
			return nil
		},
	}
}

func newExportStatsCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export-stats",
		Short: "Write the checklist statistics workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.start()
			if err != nil {
				return err
			}
			defer c.Close()

			if out == "" {
				name := "checklist_stats_" + time.Now().Format("20060102") + c.Exporter().FileExtension()
				out = filepath.Join(a.cfg.Report.OutputDir, name)
			}
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}

			if err := c.Services().Checklist.ExportStats(cmd.Context(), f); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: <report.output_dir>/checklist_stats_<date>.xlsx)")
	return cmd
}

func newSubmitShiftsCmd(a *app) *cobra.Command {
	var (
		employeeID string
		note       string
	)

	cmd := &cobra.Command{
		Use:   "submit-shifts ENTRY...",
		Short: "Submit availability entries for an employee",
		Long: `Stage availability entries and submit them as one request.

Each ENTRY has the form "YYYY-MM-DD HH:MM-HH:MM". Overlapping or
misordered entries are rejected before anything is written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stager := shift.NewStager()
			for _, arg := range args {
				iv, err := parseEntry(arg)
				if err != nil {
					return err
				}
				if _, err := stager.Add(iv); err != nil {
					return fmt.Errorf("entry %q rejected: %w", arg, err)
				}
			}

			c, err := a.start()
			if err != nil {
				return err
			}
			defer c.Close()

			sub, err := stager.SubmitAll(cmd.Context(), c.Services().ShiftRequest, employeeID, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (request %s)\n", sub.Message, sub.RequestID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee id")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Note attached to the request")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

// parseEntry reads "YYYY-MM-DD HH:MM-HH:MM"
func parseEntry(s string) (shift.Interval, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return shift.Interval{}, fmt.Errorf("entry %q: want \"YYYY-MM-DD HH:MM-HH:MM\": %w", s, errs.ErrInvalidArgument)
	}
	start, end, ok := strings.Cut(fields[1], "-")
	if !ok {
		return shift.Interval{}, fmt.Errorf("entry %q: missing time range: %w", s, errs.ErrInvalidArgument)
	}
	iv := shift.Interval{Date: fields[0], Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return shift.Interval{}, fmt.Errorf("entry %q: %w", s, err)
	}
	return iv, nil
}

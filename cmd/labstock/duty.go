package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/erazemk/labstock/internal/db"
	"github.com/erazemk/labstock/internal/metrics"
	"github.com/erazemk/labstock/internal/notify"
	"github.com/erazemk/labstock/internal/rotation"
	"github.com/erazemk/labstock/internal/timeutil"
)

func dutyAlertCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "duty-alert",
		Short: "Email the on-duty team if today is a check day",
		Long:  `Meant to be run once a day by cron or a systemd timer. A second run on the same day sends nothing unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(app.cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()

			if err := db.EnsureSchema(database); err != nil {
				return fmt.Errorf("ensuring database schema: %w", err)
			}

			alert := &notify.DutyAlert{
				DB:       database,
				Rotation: app.rotation,
				Clock:    app.clock,
				Logger:   app.logger,
				Metrics:  metrics.New(),
				Sender:   app.cfg.SMTP.SenderName,
				Force:    force,
			}
			if app.cfg.SMTP.Enabled() {
				alert.Mailer = notify.NewSMTPMailer(app.cfg.SMTP)
			}

			report, err := alert.Run(cmd.Context())
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d reminder(s) failed", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "send even if reminders already went out today")
	return cmd
}

func printReport(w io.Writer, r *notify.Report) {
	switch {
	case !r.DutyDay:
		fmt.Fprintf(w, "%s is not a duty day, nothing sent.\n", r.Date)
		return
	case r.AlreadySent:
		fmt.Fprintf(w, "Reminders for %s were already sent.\n", r.Date)
		return
	}

	if r.Team != nil {
		fmt.Fprintf(w, "Duty day %s: %s (%s)\n", r.Date, r.Team.Key, r.Team.Name)
	}
	fmt.Fprintf(w, "Sent: %d\n", len(r.Sent))
	for _, to := range r.Sent {
		fmt.Fprintf(w, "  %s\n", to)
	}

	if len(r.Failed) > 0 {
		fmt.Fprintf(w, "Failed: %d\n", len(r.Failed))
		addrs := make([]string, 0, len(r.Failed))
		for to := range r.Failed {
			addrs = append(addrs, to)
		}
		sort.Strings(addrs)
		for _, to := range addrs {
			fmt.Fprintf(w, "  %s: %s\n", to, r.Failed[to])
		}
	}
}

func scheduleCmd() *cobra.Command {
	var count int
	var from string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print upcoming duty dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := app.clock.Today()
			if from != "" {
				d, err := timeutil.ParseDate(from)
				if err != nil {
					return fmt.Errorf("invalid --from date: %w", err)
				}
				start = d
			}

			duties, err := app.rotation.Upcoming(start, count)
			if err != nil {
				return err
			}
			printSchedule(cmd.OutOrStdout(), duties)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 6, "number of duty dates to print")
	cmd.Flags().StringVar(&from, "from", "", "first date to consider (YYYY-MM-DD, default today)")
	return cmd
}

func printSchedule(w io.Writer, duties []rotation.Duty) {
	for _, d := range duties {
		fmt.Fprintf(w, "%s  %-8s %s\n", timeutil.FormatDate(d.Date), d.Team.Key, d.Team.Name)
	}
}

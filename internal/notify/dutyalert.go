package notify

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/erazemk/labstock/internal/metrics"
	"github.com/erazemk/labstock/internal/rotation"
	"github.com/erazemk/labstock/internal/store"
	"github.com/erazemk/labstock/internal/timeutil"
)

//go:embed templates
var templatesFS embed.FS

var dutyAlertTmpl = template.Must(template.ParseFS(templatesFS, "templates/duty_alert.html"))

// DefaultSender signs reminder emails when no sender name is configured.
const DefaultSender = "Lab Stock Check"

// DutyAlert reminds the on-duty team that today is their check day. It is
// meant to be run once a day by an external scheduler; a second run on the
// same day sends nothing unless Force is set.
type DutyAlert struct {
	DB       *sql.DB
	Rotation *rotation.Calculator
	Clock    *timeutil.Clock
	Mailer   Mailer
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Sender   string
	Force    bool
}

// Report summarizes one run.
type Report struct {
	Date        string            `json:"date"`
	DutyDay     bool              `json:"duty_day"`
	AlreadySent bool              `json:"already_sent"`
	Team        *rotation.Team    `json:"team,omitempty"`
	Sent        []string          `json:"sent"`
	Failed      map[string]string `json:"failed"`
}

type alertData struct {
	Name     string
	Date     string
	TeamKey  string
	TeamName string
	Sender   string
}

// Run sends the reminders for today, if today is a duty day.
func (a *DutyAlert) Run(ctx context.Context) (*Report, error) {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if a.Mailer == nil {
		return nil, ErrNotConfigured
	}

	today := a.Clock.Today()
	report := &Report{Date: timeutil.FormatDate(today), Sent: []string{}, Failed: map[string]string{}}

	if !a.Rotation.IsDutyDay(today) {
		logger.Info("not a check day, no emails sent", zap.String("date", report.Date))
		return report, nil
	}
	report.DutyDay = true
	team := a.Rotation.At(today).Current.Team
	report.Team = &team

	last, err := store.GetSetting(ctx, a.DB, store.SettingDutyAlertLastSent)
	if err != nil {
		return nil, err
	}
	if last == report.Date && !a.Force {
		report.AlreadySent = true
		logger.Info("duty alert already sent today", zap.String("date", report.Date))
		return report, nil
	}

	members, err := store.ListNotifiableUsers(ctx, a.DB, team.Name)
	if err != nil {
		return nil, err
	}
	logger.Info("check day",
		zap.String("date", report.Date),
		zap.String("team", team.Name),
		zap.Int("recipients", len(members)),
	)

	sender := a.Sender
	if sender == "" {
		sender = DefaultSender
	}
	subject := fmt.Sprintf("[%s] Stock Check Duty Reminder - %s", sender, report.Date)

	for _, u := range members {
		var body bytes.Buffer
		err := dutyAlertTmpl.Execute(&body, alertData{
			Name:     u.Name(),
			Date:     report.Date,
			TeamKey:  team.Key,
			TeamName: team.Name,
			Sender:   sender,
		})
		if err != nil {
			return nil, fmt.Errorf("rendering duty alert: %w", err)
		}

		err = a.Mailer.Send(ctx, Message{To: u.Email, Subject: subject, HTML: body.String()})
		if errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		if err != nil {
			report.Failed[u.Email] = err.Error()
			a.count("failed")
			logger.Warn("duty alert failed", zap.String("user", u.Username), zap.String("email", u.Email), zap.Error(err))
			continue
		}
		report.Sent = append(report.Sent, u.Email)
		a.count("sent")
		logger.Info("duty alert sent", zap.String("user", u.Username), zap.String("email", u.Email))
	}

	if len(report.Sent) > 0 {
		if err := store.SetSetting(ctx, a.DB, store.SettingDutyAlertLastSent, report.Date); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (a *DutyAlert) count(result string) {
	if a.Metrics != nil {
		a.Metrics.DutyAlertEmails.WithLabelValues(result).Inc()
	}
}

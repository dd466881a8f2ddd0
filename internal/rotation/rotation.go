// Package rotation maps calendar dates onto the fixed duty-team rotation.
package rotation

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/erazemk/labstock/internal/config"
	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/timeutil"
)

// Team is one duty team. Its Name is the group name users belong to.
type Team struct {
	Key                string `json:"key"`
	Name               string `json:"name"`
	RestrictedCategory string `json:"restricted_category,omitempty"`
}

// Duty is a team's check day.
type Duty struct {
	Team Team      `json:"team"`
	Date time.Time `json:"-"`
}

// Info describes the duty cycle containing a date.
type Info struct {
	Current     Duty
	Next        *Duty
	BeforeStart bool
}

// Calculator is immutable and safe for concurrent use.
type Calculator struct {
	teams    []Team
	order    []Team
	start    time.Time
	interval int
}

// New builds a calculator from validated rotation settings.
func New(cfg config.RotationConfig) (*Calculator, error) {
	if cfg.IntervalDays < 1 {
		return nil, fmt.Errorf("rotation interval must be positive, got %d", cfg.IntervalDays)
	}
	if len(cfg.Order) == 0 {
		return nil, fmt.Errorf("rotation order is empty")
	}
	start, err := timeutil.ParseDate(cfg.Start)
	if err != nil {
		return nil, fmt.Errorf("parsing rotation start: %w", err)
	}

	byKey := make(map[string]Team, len(cfg.Teams))
	c := &Calculator{start: start, interval: cfg.IntervalDays}
	for _, t := range cfg.Teams {
		team := Team{Key: t.Key, Name: t.Name, RestrictedCategory: t.RestrictedCategory}
		byKey[t.Key] = team
		c.teams = append(c.teams, team)
	}
	for _, k := range cfg.Order {
		team, ok := byKey[k]
		if !ok {
			return nil, fmt.Errorf("rotation order references unknown team %q", k)
		}
		c.order = append(c.order, team)
	}
	return c, nil
}

// Start returns the first duty date.
func (c *Calculator) Start() time.Time { return c.start }

// Interval returns the number of days between duty dates.
func (c *Calculator) Interval() int { return c.interval }

// Teams returns all configured teams in declaration order.
func (c *Calculator) Teams() []Team {
	return append([]Team(nil), c.teams...)
}

// Groups returns the group names of all teams in declaration order.
func (c *Calculator) Groups() []string {
	groups := make([]string, len(c.teams))
	for i, t := range c.teams {
		groups[i] = t.Name
	}
	return groups
}

// TeamForGroup looks up the team whose name is group.
func (c *Calculator) TeamForGroup(group string) (Team, bool) {
	for _, t := range c.teams {
		if t.Name == group {
			return t, true
		}
	}
	return Team{}, false
}

// At returns the duty cycle containing date. Dates before the rotation start
// report the first team on the start date and no next duty.
func (c *Calculator) At(date time.Time) Info {
	days := timeutil.DaysBetween(c.start, date)
	if days < 0 {
		return Info{
			Current:     Duty{Team: c.order[0], Date: c.start},
			BeforeStart: true,
		}
	}

	period := days / c.interval
	next := c.duty(period + 1)
	return Info{
		Current: c.duty(period),
		Next:    &next,
	}
}

func (c *Calculator) duty(period int) Duty {
	return Duty{
		Team: c.order[period%len(c.order)],
		Date: c.start.AddDate(0, 0, period*c.interval),
	}
}

// Previous returns the duty cycle one interval before info's current one.
// The team is re-derived from that date, so before the start it is the
// first team.
func (c *Calculator) Previous(info Info) Duty {
	date := info.Current.Date.AddDate(0, 0, -c.interval)
	return Duty{Team: c.At(date).Current.Team, Date: date}
}

// IsDutyDay reports whether date is exactly a duty date.
func (c *Calculator) IsDutyDay(date time.Time) bool {
	days := timeutil.DaysBetween(c.start, date)
	return days >= 0 && days%c.interval == 0
}

// Upcoming lists the next n duty dates on or after from.
func (c *Calculator) Upcoming(from time.Time, n int) ([]Duty, error) {
	if n <= 0 {
		return nil, nil
	}
	from = timeutil.Date(from)
	if from.Before(c.start) {
		from = c.start
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: c.interval,
		Dtstart:  c.start,
	})
	if err != nil {
		return nil, fmt.Errorf("building duty rule: %w", err)
	}

	dates := rule.Between(from, from.AddDate(0, 0, c.interval*n), true)
	if len(dates) > n {
		dates = dates[:n]
	}

	duties := make([]Duty, 0, len(dates))
	for _, d := range dates {
		duties = append(duties, Duty{Team: c.At(d).Current.Team, Date: timeutil.Date(d)})
	}
	return duties, nil
}

// CheckSubmission enforces the duty-day gate for non-admin submitters: today
// must be a duty date, group must be on duty and checkDate must be today.
func (c *Calculator) CheckSubmission(today time.Time, group string, checkDate time.Time) error {
	info := c.At(today)
	if !timeutil.Date(today).Equal(info.Current.Date) {
		return fmt.Errorf("%w: submissions are only open on duty days", model.ErrForbidden)
	}
	if group != info.Current.Team.Name {
		return fmt.Errorf("%w: only the on-duty group can submit stock checks today", model.ErrForbidden)
	}
	if !timeutil.Date(checkDate).Equal(timeutil.Date(today)) {
		return fmt.Errorf("%w: you can only submit for today's date on your duty day", model.ErrForbidden)
	}
	return nil
}

// CanEdit reports whether a submitter may edit checks for checkDate when
// viewing on today.
func (c *Calculator) CanEdit(today time.Time, group string, isAdmin bool, checkDate time.Time) bool {
	return isAdmin || c.CheckSubmission(today, group, checkDate) == nil
}

// ItemVisible reports whether items of category are shown to group. A
// category claimed by a team is private to that team.
func (c *Calculator) ItemVisible(category, group string) bool {
	for _, t := range c.teams {
		if t.RestrictedCategory != "" && t.RestrictedCategory == category {
			return t.Name == group
		}
	}
	return true
}

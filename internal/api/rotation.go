package api

import (
	"net/http"

	"github.com/erazemk/labstock/internal/rotation"
	"github.com/erazemk/labstock/internal/timeutil"
)

// RotationHandler exposes the duty schedule.
type RotationHandler struct {
	*Deps
}

// MaxUpcoming caps GET /api/rotation/upcoming.
const MaxUpcoming = 52

type dutyView struct {
	Team rotation.Team `json:"team"`
	Date string        `json:"date"`
}

func viewDuty(d rotation.Duty) dutyView {
	return dutyView{Team: d.Team, Date: timeutil.FormatDate(d.Date)}
}

type rotationView struct {
	Date          string    `json:"date"`
	Current       dutyView  `json:"current"`
	Next          *dutyView `json:"next,omitempty"`
	Previous      dutyView  `json:"previous"`
	BeforeStart   bool      `json:"before_start"`
	DutyDay       bool      `json:"duty_day"`
	RotationStart string    `json:"rotation_start"`
	IntervalDays  int       `json:"interval_days"`
}

func (h *RotationHandler) view(date string) rotationView {
	d, _ := timeutil.ParseDate(date)
	info := h.Rotation.At(d)
	v := rotationView{
		Date:        date,
		Current:     viewDuty(info.Current),
		Previous:    viewDuty(h.Rotation.Previous(info)),
		BeforeStart: info.BeforeStart,
		DutyDay:     h.Rotation.IsDutyDay(d),

		RotationStart: timeutil.FormatDate(h.Rotation.Start()),
		IntervalDays:  h.Rotation.Interval(),
	}
	if info.Next != nil {
		next := viewDuty(*info.Next)
		v.Next = &next
	}
	return v
}

// Get handles GET /api/rotation?date=.
func (h *RotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date", h.Clock.Today())
	if err != nil {
		writeError(w, h.Logger, "get rotation", err)
		return
	}
	jsonResponse(w, http.StatusOK, h.view(timeutil.FormatDate(date)))
}

// Upcoming handles GET /api/rotation/upcoming?count=.
func (h *RotationHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	count := min(queryInt(r, "count", 6), MaxUpcoming)

	duties, err := h.Rotation.Upcoming(h.Clock.Today(), count)
	if err != nil {
		writeError(w, h.Logger, "list upcoming duties", err)
		return
	}

	views := make([]dutyView, len(duties))
	for i, d := range duties {
		views[i] = viewDuty(d)
	}
	jsonResponse(w, http.StatusOK, views)
}

package api

import (
	"net/http"
	"sort"

	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/status"
	"github.com/erazemk/labstock/internal/store"
	"github.com/erazemk/labstock/internal/timeutil"
)

// DashboardHandler assembles the stock overview for one date.
type DashboardHandler struct {
	*Deps
}

type placeGroup struct {
	StockPlace string       `json:"stock_place"`
	Items      []model.Item `json:"items"`
}

type dashboardSummary struct {
	OK            int `json:"ok"`
	Low           int `json:"low"`
	Empty         int `json:"empty"`
	Unchecked     int `json:"unchecked"`
	GroupsChecked int `json:"groups_checked"`
	PendingOrders int `json:"pending_orders"`
	Ordered       int `json:"ordered"`
}

type dashboardResponse struct {
	Date           string                       `json:"date"`
	Today          string                       `json:"today"`
	Places         []placeGroup                 `json:"places"`
	Checks         []model.CheckRecord          `json:"checks"`
	PreviousChecks []model.CheckRecord          `json:"previous_checks"`
	Orders         map[int64]model.OrderRequest `json:"orders"`
	Summary        dashboardSummary             `json:"summary"`
	LastChecked    map[string]string            `json:"last_checked"`
	Rotation       rotationView                 `json:"rotation"`
	CanEdit        bool                         `json:"can_edit"`
}

// groupByPlace splits catalog-ordered items into runs of equal stock place.
func groupByPlace(items []model.Item) []placeGroup {
	places := []placeGroup{}
	for _, item := range items {
		if n := len(places); n > 0 && places[n-1].StockPlace == item.StockPlace {
			places[n-1].Items = append(places[n-1].Items, item)
			continue
		}
		places = append(places, placeGroup{StockPlace: item.StockPlace, Items: []model.Item{item}})
	}
	return places
}

// summarize counts statuses over the latest checks and open orders over
// the latest order per item. Unchecked counts the catalog items missing
// from each group that submitted anything.
func summarize(latest map[model.CheckKey]model.CheckRecord, totalItems int, orders map[int64]model.OrderRequest) dashboardSummary {
	var s dashboardSummary
	groups := make(map[string]bool)
	for k, c := range latest {
		groups[k.GroupName] = true
		switch c.Status {
		case status.OK:
			s.OK++
		case status.Low:
			s.Low++
		case status.Empty:
			s.Empty++
		}
	}
	s.GroupsChecked = len(groups)
	if s.GroupsChecked > 0 {
		s.Unchecked = max(0, totalItems*s.GroupsChecked-len(latest))
	}

	for _, o := range orders {
		switch o.Status {
		case model.OrderPending:
			s.PendingOrders++
		case model.OrderOrdered:
			s.Ordered++
		}
	}
	return s
}

func sortedChecks(m map[model.CheckKey]model.CheckRecord) []model.CheckRecord {
	checks := make([]model.CheckRecord, 0, len(m))
	for _, c := range m {
		checks = append(checks, c)
	}
	sort.Slice(checks, func(i, j int) bool {
		if checks[i].ItemID != checks[j].ItemID {
			return checks[i].ItemID < checks[j].ItemID
		}
		return checks[i].GroupName < checks[j].GroupName
	})
	return checks
}

// Get handles GET /api/dashboard?date=.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := GetClaims(ctx)
	today := h.Clock.Today()

	date, err := queryDate(r, "date", today)
	if err != nil {
		writeError(w, h.Logger, "load dashboard", err)
		return
	}
	dateStr := timeutil.FormatDate(date)
	groups := h.Rotation.Groups()

	items, err := store.ListItems(ctx, h.DB)
	if err != nil {
		writeError(w, h.Logger, "load dashboard", err)
		return
	}

	latest, err := store.LatestChecksAcrossGroups(ctx, h.DB, groups, dateStr)
	if err != nil {
		writeError(w, h.Logger, "load dashboard", err)
		return
	}

	rot := (&RotationHandler{h.Deps}).view(dateStr)
	previous, err := store.LatestChecksAcrossGroups(ctx, h.DB, groups, rot.Previous.Date)
	if err != nil {
		writeError(w, h.Logger, "load dashboard", err)
		return
	}

	orders, err := store.LatestOrderPerItem(ctx, h.DB)
	if err != nil {
		writeError(w, h.Logger, "load dashboard", err)
		return
	}

	lastChecked, err := store.LastCheckedDates(ctx, h.DB, groups)
	if err != nil {
		writeError(w, h.Logger, "load dashboard", err)
		return
	}

	jsonResponse(w, http.StatusOK, dashboardResponse{
		Date:           dateStr,
		Today:          timeutil.FormatDate(today),
		Places:         groupByPlace(items),
		Checks:         sortedChecks(latest),
		PreviousChecks: sortedChecks(previous),
		Orders:         orders,
		Summary:        summarize(latest, len(items), orders),
		LastChecked:    lastChecked,
		Rotation:       rot,
		CanEdit:        h.Rotation.CanEdit(today, claims.Group, claims.IsAdmin(), date),
	})
}

package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/store"
	"github.com/erazemk/labstock/internal/timeutil"
)

// ChecksHandler handles stock check submission, history and purges.
type ChecksHandler struct {
	*Deps
}

type submitRequest struct {
	CheckDate string             `json:"check_date"`
	GroupName string             `json:"group_name"`
	Entries   []model.CheckEntry `json:"entries"`
}

type purgeRequest struct {
	GroupName string `json:"group_name"`
	CheckDate string `json:"check_date"`
}

// Submit handles POST /api/checks. Members submit for their own group on
// their duty day; admins may submit for any group and date.
func (h *ChecksHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	today := h.Clock.Today()
	checkDate := today
	if req.CheckDate != "" {
		d, err := timeutil.ParseDate(req.CheckDate)
		if err != nil {
			writeError(w, h.Logger, "submit checks", model.Invalid(err.Error()))
			return
		}
		checkDate = d
	}

	group := claims.Group
	if claims.IsAdmin() && req.GroupName != "" {
		group = req.GroupName
	}
	if _, ok := h.Rotation.TeamForGroup(group); !ok {
		writeError(w, h.Logger, "submit checks",
			model.Invalid("group must be one of: "+strings.Join(h.Rotation.Groups(), ", ")))
		return
	}

	if !claims.IsAdmin() {
		if err := h.Rotation.CheckSubmission(today, group, checkDate); err != nil {
			writeError(w, h.Logger, "submit checks", err)
			return
		}
	}

	sub := model.Submission{
		GroupName: group,
		CheckedBy: claims.Username,
		CheckDate: timeutil.FormatDate(checkDate),
		Entries:   req.Entries,
	}
	visible := func(item model.Item) bool {
		return h.Rotation.ItemVisible(item.Category, group)
	}

	res, err := store.SubmitChecks(r.Context(), h.DB, sub, visible, h.Clock.Timestamp())
	if err != nil {
		writeError(w, h.Logger, "submit checks", err)
		return
	}
	h.Metrics.ObserveChecks(group, res.Statuses)

	h.Logger.Info("stock check submitted",
		zap.String("user", claims.Username),
		zap.String("group", group),
		zap.String("date", sub.CheckDate),
		zap.Int("saved", res.Saved),
		zap.Int("skipped", res.Skipped),
	)
	jsonResponse(w, http.StatusCreated, res)
}

// Latest handles GET /api/checks/latest. The group defaults to the caller's
// and the date to today.
func (h *ChecksHandler) Latest(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	group := r.URL.Query().Get("group")
	if group == "" {
		group = claims.Group
	}
	date, err := queryDate(r, "date", h.Clock.Today())
	if err != nil {
		writeError(w, h.Logger, "get latest checks", err)
		return
	}

	latest, err := store.LatestChecks(r.Context(), h.DB, group, timeutil.FormatDate(date))
	if err != nil {
		writeError(w, h.Logger, "get latest checks", err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"group":  group,
		"date":   timeutil.FormatDate(date),
		"checks": latest,
	})
}

// History handles GET /api/history.
func (h *ChecksHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.HistoryFilter{
		Group:    q.Get("group"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", store.DefaultPageSize),
	}
	if d := q.Get("date"); d != "" {
		if _, err := timeutil.ParseDate(d); err != nil {
			writeError(w, h.Logger, "list history", model.Invalid(err.Error()))
			return
		}
		f.Date = d
	}

	page, err := store.ListCheckHistory(r.Context(), h.DB, f)
	if err != nil {
		writeError(w, h.Logger, "list history", err)
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

// Dates handles GET /api/history/dates.
func (h *ChecksHandler) Dates(w http.ResponseWriter, r *http.Request) {
	dates, err := store.ListCheckDates(r.Context(), h.DB)
	if err != nil {
		writeError(w, h.Logger, "list check dates", err)
		return
	}
	jsonResponse(w, http.StatusOK, dates)
}

// Delete handles DELETE /api/checks/{id}. An optional date narrows the
// search to one partition.
func (h *ChecksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid check id")
		return
	}
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := timeutil.ParseDate(date); err != nil {
			writeError(w, h.Logger, "delete check", model.Invalid(err.Error()))
			return
		}
	}

	n, err := store.DeleteCheck(r.Context(), h.DB, id, date)
	if err != nil {
		writeError(w, h.Logger, "delete check", err)
		return
	}
	if n == 0 {
		jsonError(w, http.StatusNotFound, "check not found")
		return
	}

	h.Logger.Info("check deleted", zap.String("user", GetClaims(r.Context()).Username), zap.Int64("check_id", id))
	jsonResponse(w, http.StatusOK, map[string]int64{"deleted": n})
}

// Purge handles POST /api/checks/purge: every record on a date, optionally
// only one group's.
func (h *ChecksHandler) Purge(w http.ResponseWriter, r *http.Request) {
	var req purgeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CheckDate != "" {
		if _, err := timeutil.ParseDate(req.CheckDate); err != nil {
			writeError(w, h.Logger, "purge checks", model.Invalid(err.Error()))
			return
		}
	}

	n, err := store.DeleteChecksBulk(r.Context(), h.DB, req.GroupName, req.CheckDate)
	if err != nil {
		writeError(w, h.Logger, "purge checks", err)
		return
	}

	h.Logger.Info("checks purged",
		zap.String("user", GetClaims(r.Context()).Username),
		zap.String("group", req.GroupName),
		zap.String("date", req.CheckDate),
		zap.Int64("deleted", n),
	)
	jsonResponse(w, http.StatusOK, map[string]int64{"deleted": n})
}

type deleteAllResponse struct {
	Deleted     int64          `json:"deleted"`
	Partitions  int            `json:"partitions"`
	ByPartition map[string]int `json:"by_partition"`
}

// DeleteAll handles DELETE /api/checks. The response lists how many records
// each monthly table held before it was emptied.
func (h *ChecksHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	counts, err := store.CountChecks(r.Context(), h.DB)
	if err != nil {
		writeError(w, h.Logger, "count checks", err)
		return
	}

	n, partitions, err := store.DeleteAllChecks(r.Context(), h.DB)
	if err != nil {
		writeError(w, h.Logger, "delete all checks", err)
		return
	}

	h.Logger.Warn("all checks deleted",
		zap.String("user", GetClaims(r.Context()).Username),
		zap.Int64("deleted", n),
		zap.Int("partitions", partitions),
	)
	jsonResponse(w, http.StatusOK, deleteAllResponse{Deleted: n, Partitions: partitions, ByPartition: counts})
}

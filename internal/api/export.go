package api

import (
	"bytes"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/labstock/internal/export"
	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/store"
	"github.com/erazemk/labstock/internal/timeutil"
)

// ExportHandler serves check records as file downloads.
type ExportHandler struct {
	*Deps
}

func (h *ExportHandler) rows(r *http.Request) (string, []model.CheckRow, error) {
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := timeutil.ParseDate(date); err != nil {
			return "", nil, model.Invalid(err.Error())
		}
	}
	rows, err := store.ExportChecks(r.Context(), h.DB, date)
	return date, rows, err
}

func attach(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// CSV handles GET /api/export.csv?date=.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	date, rows, err := h.rows(r)
	if err != nil {
		writeError(w, h.Logger, "export checks", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rows); err != nil {
		writeError(w, h.Logger, "export checks", err)
		return
	}

	h.Logger.Info("checks exported", zap.String("format", "csv"), zap.String("date", date), zap.Int("rows", len(rows)))
	attach(w, "text/csv; charset=utf-8", export.Filename(date, "csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// PDF handles GET /api/export.pdf?date=.
func (h *ExportHandler) PDF(w http.ResponseWriter, r *http.Request) {
	date, rows, err := h.rows(r)
	if err != nil {
		writeError(w, h.Logger, "export checks", err)
		return
	}

	title := "Stock check (all dates)"
	if date != "" {
		title = "Stock check " + date
	}
	out, err := export.PDF(rows, title, h.Clock.Timestamp())
	if err != nil {
		writeError(w, h.Logger, "export checks", err)
		return
	}

	h.Logger.Info("checks exported", zap.String("format", "pdf"), zap.String("date", date), zap.Int("rows", len(rows)))
	attach(w, "application/pdf", export.Filename(date, "pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

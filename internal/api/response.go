package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/timeutil"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			zap.L().Warn("encoding response", zap.Error(err))
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

type problemsResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems"`
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognised is
// logged and reported as a generic internal error.
func writeError(w http.ResponseWriter, logger *zap.Logger, action string, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, problemsResponse{Error: "validation failed", Problems: verr.Problems})
	case errors.Is(err, model.ErrForbidden):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrConflict):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", zap.String("action", action), zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// queryDate reads a YYYY-MM-DD query parameter, falling back to def when it
// is absent.
func queryDate(r *http.Request, name string, def time.Time) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	d, err := timeutil.ParseDate(s)
	if err != nil {
		return time.Time{}, model.Invalid(err.Error())
	}
	return d, nil
}

// queryInt reads a positive integer query parameter, or def.
func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

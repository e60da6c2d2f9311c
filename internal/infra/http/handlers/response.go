package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/xavierca1/pecapital-crm/internal/storage"
	"github.com/xavierca1/pecapital-crm/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeUseCaseError keeps the error taxonomy in one place: caller mistakes
// come back as 400, missing rows as 404, everything else as a generic 500.
func writeUseCaseError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case usecase.IsDomainError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, fallback)
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && n >= 0 {
		offset = n
	}
	return limit, offset
}

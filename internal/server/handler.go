package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/law-makers/soldscrape/internal/engine"
	"github.com/law-makers/soldscrape/internal/reqctx"
	"github.com/law-makers/soldscrape/pkg/models"
	"github.com/rs/zerolog/log"
)

const maxRequestBody = 64 << 10

type scrapeHandler struct {
	svc Scraper
}

func (h *scrapeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORS(w.Header())

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method not allowed"})
		return
	}

	var req models.ScrapeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	resp, err := h.svc.Scrape(r.Context(), req)
	if err != nil {
		var ee *engine.EngineError
		if engine.IsValidation(err) && errors.As(err, &ee) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: ee.Message})
			return
		}
		log.Error().
			Err(err).
			Str("request_id", reqctx.GetRequestContext(r.Context()).RequestID).
			Msg("Scrape failed")
		failed := false
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Success: &failed, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func setCORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

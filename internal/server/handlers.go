package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"jetski/internal/app"
	"jetski/internal/comic"
	"jetski/internal/store"
)

const Version = "1.0.0"

const defaultHistoryLimit = 10

type Handler struct {
	pipeline     *app.Pipeline
	historyLimit int
}

func NewHandler(pipeline *app.Pipeline, historyLimit int) *Handler {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Handler{
		pipeline:     pipeline,
		historyLimit: historyLimit,
	}
}

type indexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type historyResponse struct {
	Status string               `json:"status"`
	Count  int                  `json:"count"`
	Videos []store.VideoSummary `json:"videos"`
}

type analyzeResponse struct {
	Status        string               `json:"status"`
	ViralAnalysis *comic.ViralAnalysis `json:"viral_analysis"`
}

type storyboardResponse struct {
	Status     string            `json:"status"`
	Storyboard *comic.Storyboard `json:"storyboard"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// jetskiRequest keeps the flags as pointers so omitted fields take their defaults.
type jetskiRequest struct {
	VideoURL        string `json:"video_url"`
	GenerateImages  *bool  `json:"generate_images"`
	CreateGoogleDoc *bool  `json:"create_google_doc"`
}

func (r jetskiRequest) toRequest() app.Request {
	req := app.NewRequest(strings.TrimSpace(r.VideoURL))
	if r.GenerateImages != nil {
		req.GenerateImages = *r.GenerateImages
	}
	if r.CreateGoogleDoc != nil {
		req.CreateGoogleDoc = *r.CreateGoogleDoc
	}
	return req
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		Message: "JetSki API is live",
		Version: Version,
		Endpoints: map[string]string{
			"jetski":     "POST /jetski",
			"analyze":    "POST /analyze?video_url=",
			"storyboard": "POST /storyboard",
			"history":    "GET /history?limit=",
			"metrics":    "GET /metrics",
		},
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	videos, err := h.pipeline.History(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if videos == nil {
		videos = []store.VideoSummary{}
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Status: "success",
		Count:  len(videos),
		Videos: videos,
	})
}

func (h *Handler) Jetski(w http.ResponseWriter, r *http.Request) {
	var body jetskiRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	req := body.toRequest()
	if req.VideoURL == "" {
		writeError(w, http.StatusBadRequest, app.ErrMissingVideoURL)
		return
	}

	result, err := h.pipeline.Run(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	videoURL := strings.TrimSpace(r.URL.Query().Get("video_url"))
	if videoURL == "" {
		writeError(w, http.StatusBadRequest, app.ErrMissingVideoURL)
		return
	}

	analysis, err := h.pipeline.Analyze(r.Context(), videoURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Status: "success", ViralAnalysis: analysis})
}

func (h *Handler) Storyboard(w http.ResponseWriter, r *http.Request) {
	var segment comic.ViralSegment
	if err := json.NewDecoder(r.Body).Decode(&segment); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	board, err := h.pipeline.Storyboard(r.Context(), segment)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, storyboardResponse{Status: "success", Storyboard: board})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

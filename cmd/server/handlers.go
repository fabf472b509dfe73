package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/expenseflow/backend/internal/service"
	"github.com/expenseflow/backend/internal/statement"
)

const dateLayout = "2006-01-02"

func registerRoutes(mux *http.ServeMux, svc *service.StatementService, maxUploadBytes int64) {
	h := &handlers{svc: svc, maxUploadBytes: maxUploadBytes}
	mux.HandleFunc("POST /api/statements/upload", h.upload)
	mux.HandleFunc("POST /api/statements/select-date-range", h.selectDateRange)
	mux.HandleFunc("POST /api/statements/import", h.importTransactions)
	mux.HandleFunc("POST /api/categories/confirm", h.confirmCategory)
	mux.HandleFunc("GET /api/sessions/info", h.sessionInfo)
}

type handlers struct {
	svc            *service.StatementService
	maxUploadBytes int64
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] failed to encode response: %v", err)
	}
}

// writeError maps pipeline error kinds to HTTP statuses so clients can
// branch on them (password prompts, re-upload on expiry).
func writeError(w http.ResponseWriter, err error) {
	var se *statement.Error
	status := http.StatusBadRequest
	code := ""
	if errors.As(err, &se) {
		code = string(se.Code)
		switch se.Code {
		case statement.ErrSessionExpired:
			status = http.StatusNotFound
		case statement.ErrPDFPasswordRequired, statement.ErrPDFPasswordIncorrect:
			status = http.StatusUnprocessableEntity
		}
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

// upload accepts a multipart statement file and opens an upload session.
func (h *handlers) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1024)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file too large or malformed multipart body"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read uploaded file"})
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing user_id field"})
		return
	}

	hint := statement.FileType(strings.ToLower(r.FormValue("file_type")))
	password := r.FormValue("password")

	result, err := h.svc.Upload(r.Context(), userID, header.Filename, data, hint, password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type selectDateRangeRequest struct {
	SessionID string `json:"session_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *handlers) selectDateRange(w http.ResponseWriter, r *http.Request) {
	var req selectDateRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing session_id"})
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid start_date %q, expected YYYY-MM-DD", req.StartDate)})
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid end_date %q, expected YYYY-MM-DD", req.EndDate)})
		return
	}

	result, err := h.svc.SelectDateRange(r.Context(), req.SessionID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type importRequest struct {
	SessionID string `json:"session_id"`
	// Clarifications maps a transaction index (as sent in ambiguous_items)
	// to the category the user picked. JSON object keys are strings.
	Clarifications map[string]string `json:"clarifications"`
}

func (h *handlers) importTransactions(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing session_id"})
		return
	}

	clarifications := make(map[int]string, len(req.Clarifications))
	for k, v := range req.Clarifications {
		idx, err := strconv.Atoi(k)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid clarification index %q", k)})
			return
		}
		clarifications[idx] = v
	}

	result, err := h.svc.Import(r.Context(), req.SessionID, clarifications)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type confirmCategoryRequest struct {
	UserID      string `json:"user_id"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (h *handlers) confirmCategory(w http.ResponseWriter, r *http.Request) {
	var req confirmCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.UserID == "" || req.Description == "" || req.Category == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id, description and category are required"})
		return
	}

	result, err := h.svc.ConfirmCategory(r.Context(), req.UserID, req.Description, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) sessionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.SessionInfo())
}

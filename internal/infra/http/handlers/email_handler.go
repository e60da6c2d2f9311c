package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/pecapital-crm/internal/entity"
	"github.com/xavierca1/pecapital-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pecapital-crm/internal/storage"
	"github.com/xavierca1/pecapital-crm/internal/usecase"
)

// 1x1 transparent GIF for the open-tracking pixel.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type EmailHandler struct {
	Store  storage.Storage
	SendUC *usecase.SendCampaignEmailUseCase
}

func NewEmailHandler(store storage.Storage, sendUC *usecase.SendCampaignEmailUseCase) *EmailHandler {
	return &EmailHandler{Store: store, SendUC: sendUC}
}

func (h *EmailHandler) HandleListSequences(w http.ResponseWriter, r *http.Request) {
	sequences, err := h.Store.GetEmailSequences(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch email sequences")
		return
	}
	writeJSON(w, http.StatusOK, sequences)
}

type CreateSequenceRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	TriggerEvent string `json:"trigger_event"`
}

func (h *EmailHandler) HandleCreateSequence(w http.ResponseWriter, r *http.Request) {
	var req CreateSequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	seq, err := entity.NewEmailSequence(req.Name, req.Description, req.TriggerEvent)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Store.CreateEmailSequence(r.Context(), seq); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create email sequence")
		return
	}

	writeJSON(w, http.StatusCreated, seq)
}

func (h *EmailHandler) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	sequenceID := chi.URLParam(r, "sequenceId")

	templates, err := h.Store.GetEmailTemplatesBySequence(r.Context(), sequenceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch email templates")
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

type CreateTemplateRequest struct {
	SequenceID string `json:"sequence_id"`
	Name       string `json:"name"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	DayDelay   int    `json:"day_delay"`
	Position   int    `json:"position"`
}

func (h *EmailHandler) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	tmpl, err := entity.NewEmailTemplate(req.SequenceID, req.Name, req.Subject, req.Content, req.DayDelay, req.Position)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Store.CreateEmailTemplate(r.Context(), tmpl); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create email template")
		return
	}

	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *EmailHandler) HandleCreateSend(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendCampaignEmailInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	send, err := h.SendUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err, "Failed to send email")
		return
	}

	middleware.RecordCampaignEmail(send.Status)
	writeJSON(w, http.StatusCreated, send)
}

// HandleTrackOpen serves the pixel embedded in outgoing emails. It always
// returns the image, even for unknown ids, so broken links don't show up in
// the recipient's client.
func (h *EmailHandler) HandleTrackOpen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.MarkEmailOpened(r.Context(), id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to record open")
		return
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(trackingPixel)
}

func (h *EmailHandler) HandleTrackClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.MarkEmailClicked(r.Context(), id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to record click")
		return
	}

	target := r.URL.Query().Get("url")
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/enjoys-in/airsend-webmail/internal/interfaces"
)

type MailHandler struct {
	service interfaces.MailService
}

func NewMailHandler(service interfaces.MailService) *MailHandler {
	return &MailHandler{service: service}
}

// Show serves GET /emails/{key}: a numeric key is a message id, anything
// else a mailbox name.
func (h *MailHandler) Show(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		h.email(w, r, id)
		return
	}
	h.mailbox(w, r, key)
}

func (h *MailHandler) mailbox(w http.ResponseWriter, r *http.Request, name string) {
	msgs, err := h.service.Mailbox(r.Context(), CurrentUser(r.Context()), name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *MailHandler) email(w http.ResponseWriter, r *http.Request, id int64) {
	msg, err := h.service.Get(r.Context(), CurrentUser(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// Update serves PUT /emails/{id} and answers with the updated message.
func (h *MailHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch interfaces.FlagPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	msg, err := h.service.Update(r.Context(), CurrentUser(r.Context()), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// Delete serves DELETE /emails/{id}.
func (h *MailHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), CurrentUser(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Compose serves POST /emails.
func (h *MailHandler) Compose(w http.ResponseWriter, r *http.Request) {
	var req interfaces.ComposeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if _, err := h.service.Send(r.Context(), CurrentUser(r.Context()), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Email sent successfully."})
}

// Reply serves GET /emails/{id}/reply with a prefilled compose form.
func (h *MailHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	draft, err := h.service.ReplyDraft(r.Context(), CurrentUser(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// Raw serves GET /emails/{id}/raw as message/rfc822.
func (h *MailHandler) Raw(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	raw, err := h.service.RawMessage(r.Context(), CurrentUser(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "message/rfc822")
	w.Header().Set("Content-Disposition", "attachment; filename=\"email-"+strconv.FormatInt(id, 10)+".eml\"")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Email not found.")
		return 0, false
	}
	return id, true
}

package draft

import (
	"encoding/json"
	"net/http"

	"github.com/tripdesk/tripdesk/internal/config"
	"github.com/tripdesk/tripdesk/internal/idempotency"
	"github.com/tripdesk/tripdesk/internal/model"
)

// Handler exposes the draft surface to the portal frontend.
type Handler struct {
	sessions *Sessions
}

func NewHandler(sessions *Sessions) *Handler {
	return &Handler{sessions: sessions}
}

func formSession(r *http.Request) (model.FormType, model.EntityID) {
	form := model.FormType(r.PathValue("form"))
	entity := model.EntityID(r.PathValue("entity"))
	if entity == NewEntitySentinel {
		entity = ""
	}
	return form, entity
}

type saveRequest struct {
	Payload model.FormPayload `json:"payload"`
	// Initial is the edit-mode snapshot; only consumed when the request
	// opens a new session.
	Initial model.FormPayload `json:"initial,omitempty"`
}

type loadResponse struct {
	Data     model.FormPayload `json:"data"`
	Restored bool              `json:"restored"`
	AgeMs    int64             `json:"ageMs"`
}

type stateResponse struct {
	IsDirty        bool `json:"isDirty"`
	HasDraftLoaded bool `json:"hasDraftLoaded"`
	IsEditMode     bool `json:"isEditMode"`
}

// ServeLoad handles GET /api/drafts/{form}/{entity}: the form-open call.
func (h *Handler) ServeLoad(w http.ResponseWriter, r *http.Request) {
	form, entity := formSession(r)
	sess := h.sessions.Acquire(form, entity, nil)

	data := sess.Manager.Load()
	if data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, loadResponse{
		Data:     data,
		Restored: sess.Manager.HasDraftLoaded(),
		AgeMs:    sess.Manager.DraftAge().Milliseconds(),
	})
}

// ServeSave handles PUT /api/drafts/{form}/{entity}: the on-change call.
func (h *Handler) ServeSave(w http.ResponseWriter, r *http.Request) {
	form, entity := formSession(r)

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid draft payload", http.StatusBadRequest)
		return
	}

	sess := h.sessions.Acquire(form, entity, req.Initial)
	sess.Manager.Save(req.Payload)
	sess.Manager.UpdateDirtyState(req.Payload)
	w.WriteHeader(http.StatusAccepted)
}

// ServeClear handles DELETE /api/drafts/{form}/{entity}: explicit discard.
func (h *Handler) ServeClear(w http.ResponseWriter, r *http.Request) {
	form, entity := formSession(r)
	sess := h.sessions.Acquire(form, entity, nil)
	sess.Manager.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// ServeDismiss handles POST .../dismiss: the user acknowledged the restored
// banner without discarding the draft.
func (h *Handler) ServeDismiss(w http.ResponseWriter, r *http.Request) {
	form, entity := formSession(r)
	sess, ok := h.sessions.Get(form, entity)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	sess.Manager.DismissRestoredNotice()
	w.WriteHeader(http.StatusNoContent)
}

// ServeState handles GET .../state: the read-only UI flags.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	form, entity := formSession(r)
	sess := h.sessions.Acquire(form, entity, nil)
	writeJSON(w, stateResponse{
		IsDirty:        sess.Manager.IsDirty(),
		HasDraftLoaded: sess.Manager.HasDraftLoaded(),
		IsEditMode:     sess.Manager.IsEditMode(),
	})
}

type submitRequest struct {
	Entity  model.EntityID    `json:"entity,omitempty"`
	Payload model.FormPayload `json:"payload"`
}

type submitResponse struct {
	Submitted      bool   `json:"submitted"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// ServeSubmit handles POST /api/submissions/{form}. It demonstrates the full
// submit cycle: the guard latches against double submits, its key is
// attached to the outgoing request metadata for the REST backend, and a
// successful submit clears the draft and closes the session.
func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	form := model.FormType(r.PathValue("form"))

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid submission payload", http.StatusBadRequest)
		return
	}

	sess, ok := h.sessions.Get(form, req.Entity)
	if !ok {
		sess = h.sessions.Acquire(form, req.Entity, nil)
	}

	key, ok := sess.Guard.BeginSubmit()
	if !ok {
		http.Error(w, "submission already in flight", http.StatusConflict)
		return
	}
	defer sess.Guard.EndSubmit()

	// The transport layer forwards these headers to the REST backend.
	outgoing := make(http.Header)
	sess.Guard.Attach(outgoing)
	draftLogger.Info().
		Str("form", string(form)).
		Str("idempotency_key", outgoing.Get(idempotency.HeaderKey)).
		Msg("Submission forwarded")

	sess.Manager.Clear()
	h.sessions.Release(form, req.Entity)

	writeJSON(w, submitResponse{Submitted: true, IdempotencyKey: key})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		draftLogger.Error().Err(err).Msg("Error encoding response")
	}
}

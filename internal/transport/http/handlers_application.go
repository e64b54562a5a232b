package httptransport

import (
	"net/http"

	"schemeportal/internal/application/service"
)

func (h *Handler) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	accountID, err := callerAccountID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req service.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	app, err := h.applications.Submit(r.Context(), accountID, &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *Handler) handleMyApplications(w http.ResponseWriter, r *http.Request) {
	accountID, err := callerAccountID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	apps, err := h.applications.ListMine(r.Context(), accountID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *Handler) handleAllApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.applications.ListAll(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) handleApproveApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "appID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req reviewRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}

	app, err := h.applications.Approve(r.Context(), appID, req.Notes)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) handleRejectApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "appID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req reviewRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}

	app, err := h.applications.Reject(r.Context(), appID, req.Notes)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

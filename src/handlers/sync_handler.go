package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/artledger/backend/src/app"
	"github.com/username/artledger/backend/src/logger"
	"github.com/username/artledger/backend/src/services"
	"github.com/username/artledger/backend/src/storage"
)

type SyncHandler struct {
	app            *app.App
	summaryService services.SummaryService
}

func NewSyncHandler(application *app.App, summaryService services.SummaryService) *SyncHandler {
	return &SyncHandler{app: application, summaryService: summaryService}
}

// currentStore resolves the record store for the persisted current project.
func (h *SyncHandler) currentStore(r *http.Request) (*storage.TransactionStore, error) {
	projectID, err := h.app.Projects.CurrentProjectID(r.Context())
	if err != nil {
		return nil, err
	}
	return h.app.RecordStore(projectID), nil
}

func (h *SyncHandler) HandleGetMode(w http.ResponseWriter, r *http.Request) {
	store, err := h.currentStore(r)
	if err != nil {
		sendJSONError(w, "Failed to read storage mode", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mode": string(store.Mode(r.Context()))})
}

func (h *SyncHandler) HandleSetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid body", http.StatusBadRequest)
		return
	}
	mode, err := storage.ParseMode(req.Mode)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	store, err := h.currentStore(r)
	if err != nil {
		sendJSONError(w, "Failed to set storage mode", http.StatusInternalServerError)
		return
	}
	if err := store.SetMode(r.Context(), mode); err != nil {
		logger.FromContext(r.Context()).Error("Failed to persist storage mode", "mode", mode, "error", err)
		sendJSONError(w, "Failed to set storage mode", http.StatusInternalServerError)
		return
	}
	logger.FromContext(r.Context()).Info("Storage mode changed", "mode", mode)
	w.WriteHeader(http.StatusNoContent)
}

// HandleStatus reports adapter availability and the last successful sync.
func (h *SyncHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	store, err := h.currentStore(r)
	if err != nil {
		sendJSONError(w, "Failed to read sync status", http.StatusInternalServerError)
		return
	}

	var lastSync *string
	if t := store.LastSyncTime(); t != nil {
		formatted := t.Format(time.RFC3339)
		lastSync = &formatted
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"configured":     h.app.SyncConfigured(),
		"available":      store.IsSyncAvailable(r.Context()),
		"mode":           string(store.Mode(r.Context())),
		"last_sync_time": lastSync,
	})
}

// HandlePush forces a local-to-cloud sync for one project. Unlike the
// implicit mirror this is user-initiated, so failures come back to the
// caller instead of being swallowed.
func (h *SyncHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	store := h.app.RecordStore(projectID)

	if err := store.ForceSyncToCloud(r.Context()); err != nil {
		if errors.Is(err, storage.ErrSyncUnavailable) {
			sendJSONError(w, "Cloud sync is not available", http.StatusServiceUnavailable)
			return
		}
		logger.FromContext(r.Context()).Error("Force push failed", "projectID", projectID, "error", err)
		sendJSONError(w, "Sync to cloud failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePull forces a cloud-to-local sync and returns the pulled records.
func (h *SyncHandler) HandlePull(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	store := h.app.RecordStore(projectID)

	transactions, err := store.ForceSyncFromCloud(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrSyncUnavailable) {
			sendJSONError(w, "Cloud sync is not available", http.StatusServiceUnavailable)
			return
		}
		logger.FromContext(r.Context()).Error("Force pull failed", "projectID", projectID, "error", err)
		sendJSONError(w, "Sync from cloud failed", http.StatusBadGateway)
		return
	}
	h.summaryService.InvalidateProjectCache(projectID)
	writeJSON(w, http.StatusOK, transactions)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/artledger/backend/src/app"
	"github.com/username/artledger/backend/src/logger"
	"github.com/username/artledger/backend/src/models"
	"github.com/username/artledger/backend/src/security/validation"
	"github.com/username/artledger/backend/src/services"
)

type TransactionHandler struct {
	app            *app.App
	summaryService services.SummaryService
}

func NewTransactionHandler(application *app.App, summaryService services.SummaryService) *TransactionHandler {
	return &TransactionHandler{
		app:            application,
		summaryService: summaryService,
	}
}

// HandleList returns the full transaction set of the project, going through
// the record store so the storage mode policy applies.
func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	store := h.app.RecordStore(projectID)

	transactions, err := store.Load(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to load transactions", "projectID", projectID, "error", err)
		sendJSONError(w, "Failed to load transactions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

// HandleSaveAll replaces the project's transaction list with the request body.
func (h *TransactionHandler) HandleSaveAll(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var transactions []models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&transactions); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	for i := range transactions {
		if err := validation.ValidateTransaction(&transactions[i]); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	store := h.app.RecordStore(projectID)
	if err := store.Save(r.Context(), transactions); err != nil {
		logger.FromContext(r.Context()).Error("Failed to save transactions", "projectID", projectID, "error", err)
		sendJSONError(w, "Failed to save transactions", http.StatusInternalServerError)
		return
	}
	h.summaryService.InvalidateProjectCache(projectID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAdd appends one transaction. A zero id is assigned the next free id
// within the project; an explicit id must be unique.
func (h *TransactionHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	ctxLogger := logger.FromContext(r.Context())

	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateTransaction(&tx); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	store := h.app.RecordStore(projectID)
	current, err := store.Load(r.Context())
	if err != nil {
		ctxLogger.Error("Failed to load transactions before add", "projectID", projectID, "error", err)
		sendJSONError(w, "Failed to add transaction", http.StatusInternalServerError)
		return
	}

	maxID := 0
	for _, existing := range current {
		if existing.ID == tx.ID && tx.ID != 0 {
			sendJSONError(w, "Transaction id already exists in this project", http.StatusConflict)
			return
		}
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	if tx.ID == 0 {
		tx.ID = maxID + 1
	}

	fullList := append(current, tx)
	if err := store.Add(r.Context(), tx, fullList); err != nil {
		ctxLogger.Error("Failed to add transaction", "projectID", projectID, "error", err)
		sendJSONError(w, "Failed to add transaction", http.StatusInternalServerError)
		return
	}
	h.summaryService.InvalidateProjectCache(projectID)
	writeJSON(w, http.StatusCreated, tx)
}

// HandleDelete removes one transaction by id.
func (h *TransactionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	ctxLogger := logger.FromContext(r.Context())

	transactionID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		sendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	store := h.app.RecordStore(projectID)
	current, err := store.Load(r.Context())
	if err != nil {
		ctxLogger.Error("Failed to load transactions before delete", "projectID", projectID, "error", err)
		sendJSONError(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	fullList := make([]models.Transaction, 0, len(current))
	found := false
	for _, tx := range current {
		if tx.ID == transactionID {
			found = true
			continue
		}
		fullList = append(fullList, tx)
	}
	if !found {
		sendJSONError(w, "Transaction not found", http.StatusNotFound)
		return
	}

	if err := store.Delete(r.Context(), transactionID, fullList); err != nil {
		ctxLogger.Error("Failed to delete transaction", "projectID", projectID, "transactionID", transactionID, "error", err)
		sendJSONError(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}
	h.summaryService.InvalidateProjectCache(projectID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSummary returns cached income/expense totals for the project.
func (h *TransactionHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	summary, err := h.summaryService.GetProjectSummary(r.Context(), projectID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to compute summary", "projectID", projectID, "error", err)
		sendJSONError(w, "Failed to compute summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

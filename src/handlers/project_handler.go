package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/artledger/backend/src/logger"
	"github.com/username/artledger/backend/src/projects"
	"github.com/username/artledger/backend/src/security/validation"
	"github.com/username/artledger/backend/src/services"
)

type ProjectHandler struct {
	repo           *projects.Repository
	summaryService services.SummaryService
}

func NewProjectHandler(repo *projects.Repository, summaryService services.SummaryService) *ProjectHandler {
	return &ProjectHandler{repo: repo, summaryService: summaryService}
}

const MaxProjects = 50 // Limite de projetos por utilizador

// HandleList returns active projects, or every project (including
// soft-deleted ones) when include_deleted=true.
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var err error
	var list any
	if r.URL.Query().Get("include_deleted") == "true" {
		list, err = h.repo.LoadAll(r.Context())
	} else {
		list, err = h.repo.LoadActive(r.Context())
	}
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list projects", "error", err)
		sendJSONError(w, "Failed to retrieve projects", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid body", http.StatusBadRequest)
		return
	}
	name, err := validation.ValidateProjectName(req.Name)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := h.repo.LoadAll(r.Context())
	if err != nil {
		sendJSONError(w, "Failed to check project limit", http.StatusInternalServerError)
		return
	}
	if len(existing) >= MaxProjects {
		logger.FromContext(r.Context()).Warn("Project limit reached", "count", len(existing))
		sendJSONError(w, "Project limit reached", http.StatusForbidden)
		return
	}

	project, err := h.repo.Create(r.Context(), name)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to create project", "error", err)
		sendJSONError(w, "Failed to create project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// HandleUpdate renames a project. Full-replace semantics on the repository:
// the stored entity is fetched, mutated, and written back whole.
func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid body", http.StatusBadRequest)
		return
	}
	name, err := validation.ValidateProjectName(req.Name)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	all, err := h.repo.LoadAll(r.Context())
	if err != nil {
		sendJSONError(w, "Failed to update project", http.StatusInternalServerError)
		return
	}
	for _, p := range all {
		if p.ID == projectID {
			p.Name = name
			if err := h.repo.Update(r.Context(), p); err != nil {
				sendJSONError(w, "Failed to update project", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	sendJSONError(w, "Project not found", http.StatusNotFound)
}

// HandleDelete soft-deletes a project. Its transactions stay on disk; they
// simply stop being reachable through the active project list.
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	if err := h.repo.Delete(r.Context(), projectID); err != nil {
		if errors.Is(err, projects.ErrProjectNotFound) {
			sendJSONError(w, "Project not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to delete project", "projectID", projectID, "error", err)
		sendJSONError(w, "Failed to delete project", http.StatusInternalServerError)
		return
	}
	h.summaryService.InvalidateProjectCache(projectID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) HandleGetCurrent(w http.ResponseWriter, r *http.Request) {
	id, err := h.repo.CurrentProjectID(r.Context())
	if err != nil {
		sendJSONError(w, "Failed to read current project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"current_project_id": id})
}

func (h *ProjectHandler) HandleSetCurrent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentProjectID string `json:"current_project_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CurrentProjectID == "" {
		sendJSONError(w, "Invalid body", http.StatusBadRequest)
		return
	}
	if err := h.repo.SetCurrentProjectID(r.Context(), req.CurrentProjectID); err != nil {
		sendJSONError(w, "Failed to set current project", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/clientdesk/clientdesk/internal/handler/dto"
	"github.com/clientdesk/clientdesk/internal/model"
	"github.com/clientdesk/clientdesk/internal/service"
)

// ProjectHandler handles project endpoints.
type ProjectHandler struct {
	service *service.ProjectService
	logger  *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: svc,
		logger:  logger,
	}
}

// Create handles POST /api/v1/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	project, err := h.service.Create(r.Context(), actor, service.CreateProjectInput{
		AccountID:   req.AccountID,
		FullName:    req.FullName,
		ShortName:   req.ShortName,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreatedResponse{ID: project.ID})
}

// Cancel handles PUT /api/v1/projects/{id}/cancel.
func (h *ProjectHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	project, err := h.service.Cancel(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, project.ToResponse())
}

// Delete handles DELETE /api/v1/projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "project deleted"})
}

// ListByAccount handles GET /api/v1/accounts/{id}/projects.
func (h *ProjectHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	projects, err := h.service.ListByAccount(r.Context(), actor, accountID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	resp := make([]model.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, p.ToResponse())
	}

	writeJSON(w, http.StatusOK, resp)
}

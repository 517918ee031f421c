package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/taskdeck/taskdeck/internal/platform/errors"
	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	tasksapp "github.com/taskdeck/taskdeck/internal/services/tasks/app"
	"github.com/taskdeck/taskdeck/internal/services/tasks/task"
)

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
}

type patchTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

type taskDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type taskListResponse struct {
	Data  []taskDTO `json:"data"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

func toTaskDTO(t task.Task) taskDTO {
	dto := taskDTO{
		ID:        t.ID,
		Title:     t.Title,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.Description != nil {
		description := *t.Description
		dto.Description = &description
	}
	if t.DueDate != nil {
		dueDate := t.DueDate.UTC().Format(time.RFC3339)
		dto.DueDate = &dueDate
	}
	return dto
}

// parseDueDate accepts RFC 3339 timestamps only.
func parseDueDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperrors.WithMetadata(
			apperrors.CodeValidation,
			fmt.Sprintf("due_date %q is not an RFC 3339 timestamp", raw),
			map[string]string{"field": "due_date"},
		)
	}
	return parsed.UTC(), nil
}

type tasksHandler struct {
	tasks *tasksapp.Service
}

// create persists a new task owned by the caller.
func (h *tasksHandler) create(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      task.Status(req.Status),
		Priority:    task.Priority(req.Priority),
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		input.DueDate = &dueDate
	}

	created, err := h.tasks.Create(httpx.RequestContext(r), identity.UserID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, toTaskDTO(created))
}

// list returns one page of the caller's tasks.
func (h *tasksHandler) list(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := parseListRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.tasks.List(httpx.RequestContext(r), identity.UserID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := taskListResponse{
		Data:  make([]taskDTO, 0, len(result.Tasks)),
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
	}
	for _, found := range result.Tasks {
		response.Data = append(response.Data, toTaskDTO(found))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, response)
}

// parseListRequest reads filter and pagination query parameters. Enum values
// are validated downstream; numeric parameters must at least be integers.
func parseListRequest(r *http.Request) (tasksapp.ListRequest, error) {
	query := r.URL.Query()
	var req tasksapp.ListRequest

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status := task.Status(raw)
		req.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("priority")); raw != "" {
		priority := task.Priority(raw)
		req.Priority = &priority
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return tasksapp.ListRequest{}, apperrors.WithMetadata(
				apperrors.CodeValidation,
				fmt.Sprintf("limit %q is not an integer", raw),
				map[string]string{"field": "limit"},
			)
		}
		req.Limit = limit
	}
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return tasksapp.ListRequest{}, apperrors.WithMetadata(
				apperrors.CodeValidation,
				fmt.Sprintf("page %q is not an integer", raw),
				map[string]string{"field": "page"},
			)
		}
		req.Page = page
	}
	return req, nil
}

// get fetches one of the caller's tasks.
func (h *tasksHandler) get(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	found, err := h.tasks.Get(httpx.RequestContext(r), identity.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toTaskDTO(found))
}

// patch applies a partial update and returns the stored row.
func (h *tasksHandler) patch(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req patchTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	update := task.Patch{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := task.Status(*req.Status)
		update.Status = &status
	}
	if req.Priority != nil {
		priority := task.Priority(*req.Priority)
		update.Priority = &priority
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		update.DueDate = &dueDate
	}

	updated, err := h.tasks.Update(httpx.RequestContext(r), identity.UserID, r.PathValue("id"), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toTaskDTO(updated))
}

// delete removes one of the caller's tasks.
func (h *tasksHandler) delete(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.tasks.Delete(httpx.RequestContext(r), identity.UserID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskauth-api/internal/model"
	"github.com/BuzzLyutic/taskauth-api/internal/service"
	"github.com/BuzzLyutic/taskauth-api/pkg/respond"
)

type createTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Priority    *int    `json:"priority" validate:"omitempty,min=1,max=10"`
}

type updateTaskRequest struct {
	Title       *string        `json:"title" validate:"omitempty,max=200"`
	Description nullableString `json:"description"`
	Priority    *int           `json:"priority" validate:"omitempty,min=1,max=10"`
	Completed   *bool          `json:"completed"`
}

// nullableString tells an explicit null apart from an omitted field.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

type TaskHandler struct {
	service  *service.TaskService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service:  srv,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, r, "not authenticated")
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		bodyError(w, r, fmt.Errorf("invalid json: %w", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	t := model.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    service.DefaultPriority,
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}

	task, err := h.service.Create(r.Context(), caller, t)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.target(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, r, "not authenticated")
		return
	}

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultListLimit)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.service.List(r.Context(), caller, skip, limit)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

// Update applies a partial update; omitted fields keep their stored values.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		bodyError(w, r, fmt.Errorf("invalid json: %w", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	patch := model.TaskPatch{
		Title:            req.Title,
		Description:      req.Description.Value,
		ClearDescription: req.Description.Set && req.Description.Value == nil,
		Priority:         req.Priority,
		Completed:        req.Completed,
	}

	task, err := h.service.Update(r.Context(), caller, id, patch)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.target(w, r)
	if !ok {
		return
	}

	task, err := h.service.Complete(r.Context(), caller, id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// Delete responds with the removed task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.target(w, r)
	if !ok {
		return
	}

	task, err := h.service.Delete(r.Context(), caller, id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, r, "not authenticated")
		return
	}

	stats, err := h.service.Stats(r.Context(), caller)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

// target extracts the caller and the {id} path parameter, writing the error response itself.
func (h *TaskHandler) target(w http.ResponseWriter, r *http.Request) (model.User, int64, bool) {
	caller, ok := UserFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, r, "not authenticated")
		return model.User{}, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, r, http.StatusBadRequest, "invalid task id")
		return model.User{}, 0, false
	}
	return caller, id, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

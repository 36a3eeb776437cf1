package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adilzhan/taskgate/internal/domain"
	"github.com/adilzhan/taskgate/internal/queue"
	"github.com/adilzhan/taskgate/internal/repo"
	"github.com/adilzhan/taskgate/internal/service"
)

type createTaskReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateTask godoc
// @Summary Create a task
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body createTaskReq true "title, description"
// @Success 201 {object} ServiceResponse
// @Failure 400 {object} ServiceResponse
// @Failure 401 {object} ServiceResponse
// @Router /api/task [post]
func (h *Handler) CreateTask(c *gin.Context) {
	u, ok := authedUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var in createTaskReq
	if err := c.ShouldBindJSON(&in); err != nil ||
		strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		fail(c, http.StatusBadRequest, "Title and description are required")
		return
	}

	t, err := h.Tasks.Create(c.Request.Context(), u.ID, strings.TrimSpace(in.Title), strings.TrimSpace(in.Description))
	if err != nil {
		failInternal(c, "create task", err)
		return
	}

	go h.Events.Publish(context.WithoutCancel(c.Request.Context()), queue.TaskExchange, queue.KeyTaskCreated,
		queue.TaskCreated{TaskID: t.ID.Hex(), UserID: u.ID.Hex(), Title: t.Title},
		c.GetString(requestIDKey))

	respond(c, http.StatusCreated, "Task created", t)
}

// ListTasks godoc
// @Summary List the caller's tasks
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param page query int false "page (1-based)"
// @Param limit query int false "page size"
// @Param title query string false "title filter"
// @Success 200 {object} ServiceResponse
// @Failure 401 {object} ServiceResponse
// @Router /api/task [get]
func (h *Handler) ListTasks(c *gin.Context) {
	u, ok := authedUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	list, err := h.Tasks.List(c.Request.Context(), u.ID, repo.TaskListParams{
		Page:  page,
		Limit: limit,
		Title: c.Query("title"),
	})
	if err != nil {
		failInternal(c, "list tasks", err)
		return
	}
	respond(c, http.StatusOK, "Tasks retrieved", list)
}

// GetTask godoc
// @Summary Get one task
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param id path string true "task id"
// @Success 200 {object} ServiceResponse
// @Failure 404 {object} ServiceResponse
// @Router /api/task/{id} [get]
func (h *Handler) GetTask(c *gin.Context) {
	u, ok := authedUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid task id")
		return
	}

	t, err := h.Tasks.Get(c.Request.Context(), id, u.ID)
	switch err {
	case nil:
	case service.ErrTaskNotFound:
		fail(c, http.StatusNotFound, err.Error())
		return
	default:
		failInternal(c, "get task", err)
		return
	}
	respond(c, http.StatusOK, "Task retrieved", t)
}

type updateTaskReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// UpdateTask godoc
// @Summary Update title/description/status
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "task id"
// @Param payload body updateTaskReq true "update"
// @Success 200 {object} ServiceResponse
// @Failure 400 {object} ServiceResponse
// @Failure 404 {object} ServiceResponse
// @Router /api/task/{id} [put]
func (h *Handler) UpdateTask(c *gin.Context) {
	u, ok := authedUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid task id")
		return
	}
	var in updateTaskReq
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Title) == "" {
		fail(c, http.StatusBadRequest, "Title is required")
		return
	}
	status := domain.TaskStatus(in.Status)
	if !status.Valid() {
		fail(c, http.StatusBadRequest, "Status must be Open, In Progress or Done")
		return
	}

	t, err := h.Tasks.Update(c.Request.Context(), id, u.ID, strings.TrimSpace(in.Title), strings.TrimSpace(in.Description), status)
	switch err {
	case nil:
	case service.ErrTaskNotFound:
		fail(c, http.StatusNotFound, err.Error())
		return
	default:
		failInternal(c, "update task", err)
		return
	}
	respond(c, http.StatusOK, "Task updated", t)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param id path string true "task id"
// @Success 200 {object} ServiceResponse
// @Failure 404 {object} ServiceResponse
// @Router /api/task/{id} [delete]
func (h *Handler) DeleteTask(c *gin.Context) {
	u, ok := authedUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid task id")
		return
	}

	t, err := h.Tasks.Delete(c.Request.Context(), id, u.ID)
	switch err {
	case nil:
	case service.ErrTaskNotFound:
		fail(c, http.StatusNotFound, err.Error())
		return
	default:
		failInternal(c, "delete task", err)
		return
	}
	respond(c, http.StatusOK, "Task deleted", t)
}

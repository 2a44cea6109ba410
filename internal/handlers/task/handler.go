package task

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tasktracker/infras/otel"
	"tasktracker/internal/domains/task/model/dto"
	"tasktracker/internal/domains/task/service"
	"tasktracker/shared/constant"
	"tasktracker/shared/validator"
	"tasktracker/transport/http/middleware"
	"tasktracker/transport/http/response"
)

type Handler struct {
	service    service.Task
	middleware middleware.Auth
	otel       otel.Otel
}

func New(service service.Task, middleware middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/tasks", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Auth)

		routerGroup.Get("/", handler.ListTasks)
		routerGroup.Post("/", handler.CreateTask)
		routerGroup.Put("/{id}", handler.UpdateTask)
		routerGroup.Delete("/{id}", handler.DeleteTask)
	})
}

// ListTasks returns the caller's tasks.
// @Summary List tasks
// @Description List every task owned by the authenticated user in creation order.
// @Tags Task
// @Produce json
// @Success 200 {array} dto.TaskResponse
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/tasks [get]
// @Security BearerAuth
func (handler *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ListTasks")
	defer scope.End()

	tasks, err := handler.service.List(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list tasks")

		response.WithError(w, err)

		return
	}

	scope.SetAttribute("tasks.count", len(tasks))

	response.WithRawJSON(w, http.StatusOK, tasks)
}

// CreateTask creates a task owned by the caller.
// @Summary Create a task
// @Description Create a task. Only title and completed are read from the body; completed defaults to false.
// @Tags Task
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Create Task Request"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/tasks [post]
// @Security BearerAuth
func (handler *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateTask")
	defer scope.End()

	req := dto.CreateTaskRequest{}

	if err := validator.Decode(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decode request body")

		response.WithError(w, err)

		return
	}

	task, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create task")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Task created " + task.ID)

	response.WithRawJSON(w, http.StatusOK, task)
}

// UpdateTask merges the provided fields into a task.
// @Summary Update a task
// @Description Shallow merge of title and completed. Responds with null when there is no such task.
// @Tags Task
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Update Task Request"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/tasks/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateTask")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateTaskRequest{}
	if err := validator.Decode(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decode request body")

		response.WithError(w, err)

		return
	}

	task, err := handler.service.Update(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update task")

		response.WithError(w, err)

		return
	}

	scope.SetAttribute("task.found", task != nil)

	response.WithRawJSON(w, http.StatusOK, task)
}

// DeleteTask removes a task.
// @Summary Delete a task
// @Description Delete a task by id. Deleting a task that does not exist also succeeds.
// @Tags Task
// @Param id path string true "Task ID"
// @Success 204
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/tasks/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteTask")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete task")

		response.WithError(w, err)

		return
	}

	response.WithNoContent(w)
}

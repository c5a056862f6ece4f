package api

import (
	"errors"
	"net/http"
	"strconv"

	"educrm-api/pkg/task"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (e *Env) GetTasksController(c *gin.Context) {
	actor := currentActor(c)

	query := task.ListQuery{All: c.Query("all") == "true"}
	if raw := c.Query("userId"); raw != "" {
		id, err := parseUintParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid userId"))
			return
		}
		query.UserID = &id
	}
	if raw := c.Query("contactId"); raw != "" {
		id, err := parseUintParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid contactId"))
			return
		}
		query.ContactID = &id
	}
	if raw := c.Query("recurringTaskId"); raw != "" {
		id, err := parseUintParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid recurringTaskId"))
			return
		}
		query.RecurringTaskID = &id
	}

	tasks, err := e.taskService.GetTasks(c.Request.Context(), query, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(tasks))
}

func (e *Env) GetTaskByIdController(c *gin.Context) {
	id, err := parseUintParam(c.Param("task-id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid task id"))
		return
	}
	t, err := e.taskService.GetTaskByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(t))
}

func (e *Env) CreateTaskController(c *gin.Context) {
	var requestBody task.SaveTaskRequest
	if err := c.BindJSON(&requestBody); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid request body"))
		return
	}

	created, err := e.taskService.CreateTask(c.Request.Context(), requestBody, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(created))
}

// UpdateTaskController replaces the whole task document; partial payloads are
// not merged. Replies travel through the replies sub-resource instead.
func (e *Env) UpdateTaskController(c *gin.Context) {
	id, err := parseUintParam(c.Param("task-id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid task id"))
		return
	}
	var requestBody task.SaveTaskRequest
	if err := c.BindJSON(&requestBody); err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid request body"))
		return
	}

	updated, err := e.taskService.UpdateTask(c.Request.Context(), id, requestBody, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(updated))
}

func (e *Env) DeleteTaskController(c *gin.Context) {
	id, err := parseUintParam(c.Param("task-id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid task id"))
		return
	}
	if err := e.taskService.DeleteTask(c.Request.Context(), id, currentActor(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse("task deleted"))
}

func (e *Env) AddReplyController(c *gin.Context) {
	id, err := parseUintParam(c.Param("task-id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid task id"))
		return
	}
	var requestBody task.ReplyRequest
	if err := c.BindJSON(&requestBody); err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid request body"))
		return
	}

	reply, err := e.taskService.AddReply(c.Request.Context(), id, requestBody, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(reply))
}

func (e *Env) UpdateReplyController(c *gin.Context) {
	id, err := parseUintParam(c.Param("task-id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid task id"))
		return
	}
	var requestBody task.ReplyRequest
	if err := c.BindJSON(&requestBody); err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid request body"))
		return
	}

	reply, err := e.taskService.UpdateReply(c.Request.Context(), id, c.Param("reply-id"), requestBody, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(reply))
}

func (e *Env) DeleteReplyController(c *gin.Context) {
	id, err := parseUintParam(c.Param("task-id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid task id"))
		return
	}
	if err := e.taskService.DeleteReply(c.Request.Context(), id, c.Param("reply-id"), currentActor(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse("reply deleted"))
}

func (e *Env) ForwardTaskController(c *gin.Context) {
	id, err := parseUintParam(c.Param("task-id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid task id"))
		return
	}
	var requestBody task.ForwardTaskRequest
	if err := c.BindJSON(&requestBody); err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid request body"))
		return
	}
	if requestBody.AssignedTo == 0 {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("assignedTo is required"))
		return
	}

	forwarded, err := e.taskService.ForwardTask(c.Request.Context(), id, requestBody.AssignedTo, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(forwarded))
}

func (e *Env) CompleteTaskController(c *gin.Context) {
	id, err := parseUintParam(c.Param("task-id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid task id"))
		return
	}
	completed, err := e.taskService.CompleteTask(c.Request.Context(), id, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(completed))
}

func (e *Env) GetRecurringTasksController(c *gin.Context) {
	defs, err := e.recurringService.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(defs))
}

func (e *Env) CreateRecurringTaskController(c *gin.Context) {
	var requestBody task.CreateRecurringTaskRequest
	if err := c.BindJSON(&requestBody); err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid request body"))
		return
	}
	created, err := e.recurringService.Create(c.Request.Context(), requestBody, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(created))
}

func (e *Env) UpdateRecurringTaskController(c *gin.Context) {
	id, err := parseUintParam(c.Param("recurring-task-id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid recurring task id"))
		return
	}
	var requestBody task.UpdateRecurringTaskRequest
	if err := c.BindJSON(&requestBody); err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid request body"))
		return
	}
	updated, err := e.recurringService.Update(c.Request.Context(), id, requestBody)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(updated))
}

func (e *Env) DeleteRecurringTaskController(c *gin.Context) {
	id, err := parseUintParam(c.Param("recurring-task-id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid recurring task id"))
		return
	}
	if err := e.recurringService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse("recurring task deleted"))
}

func (e *Env) GetRecurringTaskHistoryController(c *gin.Context) {
	id, err := parseUintParam(c.Param("recurring-task-id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid recurring task id"))
		return
	}
	history, err := e.recurringService.History(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(history))
}

func parseUintParam(raw string) (uint, error) {
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

// respondServiceError translates service errors into the documented taxonomy:
// validation 400, permission 403, missing 404, everything else 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case task.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, defaultErrorResponse(err.Error()))
	case errors.Is(err, task.ErrForbidden),
		errors.Is(err, task.ErrNotAssignee),
		errors.Is(err, task.ErrNotReplyAuthor):
		c.JSON(http.StatusForbidden, defaultErrorResponse(err.Error()))
	case errors.Is(err, task.ErrEmptyReply),
		errors.Is(err, task.ErrDoneViaUpdate),
		errors.Is(err, task.ErrTaskDone):
		c.JSON(http.StatusBadRequest, defaultErrorResponse(err.Error()))
	case task.IsValidationError(err):
		c.JSON(http.StatusBadRequest, defaultErrorResponse(err.Error()))
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		c.JSON(http.StatusInternalServerError, defaultErrorResponse("internal error"))
	}
}

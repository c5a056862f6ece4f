package api

import (
	"errors"
	"net/http"

	"educrm-api/pkg/auth"
	"educrm-api/pkg/metric"
	"educrm-api/pkg/model"
	"educrm-api/pkg/orm"
	"educrm-api/pkg/task"
	"educrm-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Env bundles the services the handlers dispatch to; routes.go builds one per
// process from the shared database handle.
type Env struct {
	authService      *auth.AuthService
	taskService      *task.TaskService
	recurringService *task.RecurringTaskService
	metricService    *metric.MetricService
	staffORM         *orm.StaffORM
	contactORM       *orm.ContactORM
}

func NewEnv(db *gorm.DB, notifier task.Notifier) *Env {
	taskService := task.NewTaskService(db)
	if notifier != nil {
		taskService = taskService.WithNotifier(notifier)
	}
	return &Env{
		authService:      auth.NewAuthService(db),
		taskService:      taskService,
		recurringService: task.NewRecurringTaskService(db),
		metricService:    metric.NewMetricService(db),
		staffORM:         orm.NewStaffORM(db),
		contactORM:       orm.NewContactORM(db),
	}
}

func (e *Env) LoginController(c *gin.Context) {
	var requestBody auth.LoginRequest
	if err := c.BindJSON(&requestBody); err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("invalid request body"))
		return
	}
	if requestBody.Email == "" || requestBody.Password == "" {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("email and password are required"))
		return
	}

	session, err := e.authService.Login(c.Request.Context(), requestBody)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, defaultErrorResponse("invalid email or password"))
			return
		}
		log.Error().Err(err).Msg("Login failed")
		c.JSON(http.StatusInternalServerError, defaultErrorResponse("login failed"))
		return
	}

	c.JSON(http.StatusOK, defaultSuccessResponse(session))
}

func (e *Env) LogoutController(c *gin.Context) {
	claimsValue, ok := c.Get("claims")
	if !ok {
		c.JSON(http.StatusUnauthorized, defaultErrorResponse("unauthorized"))
		return
	}
	claims := claimsValue.(*auth.Claims)
	if err := e.authService.Logout(c.Request.Context(), claims); err != nil {
		log.Error().Err(err).Msg("Logout failed")
		c.JSON(http.StatusInternalServerError, defaultErrorResponse("logout failed"))
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse("logged out"))
}

// GetStaffController serves the read-only directory behind assignment pickers.
func (e *Env) GetStaffController(c *gin.Context) {
	staff, err := e.staffORM.GetAll(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list staff")
		c.JSON(http.StatusInternalServerError, defaultErrorResponse("failed to list staff"))
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(staff))
}

func (e *Env) GetContactsController(c *gin.Context) {
	contacts, err := e.contactORM.GetAll(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list contacts")
		c.JSON(http.StatusInternalServerError, defaultErrorResponse("failed to list contacts"))
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(contacts))
}

// GetMetricsController serves the cached workload snapshot to admins.
func (e *Env) GetMetricsController(c *gin.Context) {
	metrics, err := e.metricService.GetTaskMetrics(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute task metrics")
		c.JSON(http.StatusInternalServerError, defaultErrorResponse("failed to compute metrics"))
		return
	}
	c.JSON(http.StatusOK, defaultSuccessResponse(metrics))
}

// UploadAttachmentController stores a reply attachment and returns the
// {name, url, size} record the caller embeds in the reply payload.
func (e *Env) UploadAttachmentController(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, defaultErrorResponse("file is required"))
		return
	}

	result, err := utils.UploadFileToS3(c.Request.Context(), file)
	if err != nil {
		log.Error().Err(err).Msg("Attachment upload failed")
		c.JSON(http.StatusInternalServerError, defaultErrorResponse("upload failed"))
		return
	}

	c.JSON(http.StatusOK, defaultSuccessResponse(model.Attachment{
		Name: file.Filename,
		URL:  result.Location,
		Size: file.Size,
	}))
}

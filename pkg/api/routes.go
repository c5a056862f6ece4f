package api

import (
	"educrm-api/pkg/task"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes wires the documented REST surface onto the router. Every
// endpoint except login sits behind bearer-token auth; the recurring-task
// admin panel additionally requires the admin role.
func RegisterRoutes(router *gin.Engine, db *gorm.DB, notifier task.Notifier) *Env {
	env := NewEnv(db, notifier)

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", LoginRateLimiter(), env.LoginController)
			authGroup.POST("/logout", AuthMiddleware(), env.LogoutController)
		}

		tasks := apiV1.Group("/tasks")
		tasks.Use(AuthMiddleware())
		{
			tasks.GET("", ReadTaskRateLimiter(), env.GetTasksController)
			tasks.POST("", WriteTaskRateLimiter(), env.CreateTaskController)
			tasks.GET("/:task-id", ReadTaskRateLimiter(), env.GetTaskByIdController)
			tasks.PUT("/:task-id", WriteTaskRateLimiter(), env.UpdateTaskController)
			tasks.DELETE("/:task-id", WriteTaskRateLimiter(), env.DeleteTaskController)

			tasks.POST("/:task-id/replies", WriteTaskRateLimiter(), env.AddReplyController)
			tasks.PUT("/:task-id/replies/:reply-id", WriteTaskRateLimiter(), env.UpdateReplyController)
			tasks.DELETE("/:task-id/replies/:reply-id", WriteTaskRateLimiter(), env.DeleteReplyController)

			tasks.POST("/:task-id/forward", WriteTaskRateLimiter(), env.ForwardTaskController)
			tasks.POST("/:task-id/complete", WriteTaskRateLimiter(), env.CompleteTaskController)
		}

		recurring := apiV1.Group("/recurring-tasks")
		recurring.Use(AuthMiddleware(), AdminOnly())
		{
			recurring.GET("", GeneralRateLimiter(), env.GetRecurringTasksController)
			recurring.POST("", WriteTaskRateLimiter(), env.CreateRecurringTaskController)
			recurring.PUT("/:recurring-task-id", WriteTaskRateLimiter(), env.UpdateRecurringTaskController)
			recurring.DELETE("/:recurring-task-id", WriteTaskRateLimiter(), env.DeleteRecurringTaskController)
			recurring.GET("/:recurring-task-id/history", GeneralRateLimiter(), env.GetRecurringTaskHistoryController)
		}

		apiV1.GET("/metrics", GeneralRateLimiter(), AuthMiddleware(), AdminOnly(), env.GetMetricsController)
		apiV1.GET("/staff", GeneralRateLimiter(), AuthMiddleware(), env.GetStaffController)
		apiV1.GET("/contacts", GeneralRateLimiter(), AuthMiddleware(), env.GetContactsController)
		apiV1.POST("/attachments", WriteTaskRateLimiter(), AuthMiddleware(), env.UploadAttachmentController)
	}

	return env
}

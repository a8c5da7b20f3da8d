package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"productivity-tracker/backend/internal/monitoring"
)

// RouterConfig carries the handlers and optional middleware for the HTTP
// surface. RateLimit is nil when rate limiting is disabled.
type RouterConfig struct {
	Tasks     *TaskHandler
	Habits    *HabitHandler
	Goals     *GoalHandler
	Analytics *AnalyticsHandler
	RateLimit gin.HandlerFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.MetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	router.GET("/health", monitoring.HealthHandler())
	router.GET("/live", monitoring.LivenessHandler())
	router.GET("/metrics", monitoring.MetricsHandler())

	api := router.Group("/api/v1")
	if cfg.RateLimit != nil {
		api.Use(cfg.RateLimit)
	}

	tasks := api.Group("/tasks")
	{
		tasks.POST("", cfg.Tasks.CreateTask)
		tasks.GET("", cfg.Tasks.GetTasks)
		tasks.GET("/search", cfg.Tasks.SearchTasks)
		tasks.GET("/due", cfg.Tasks.GetTasksDue)
		tasks.PUT("/:id", cfg.Tasks.UpdateTask)
		tasks.POST("/:id/toggle", cfg.Tasks.ToggleTask)
		tasks.DELETE("/:id", cfg.Tasks.DeleteTask)
	}

	habits := api.Group("/habits")
	{
		habits.POST("", cfg.Habits.CreateHabit)
		habits.GET("", cfg.Habits.GetHabits)
		habits.PUT("/:id", cfg.Habits.UpdateHabit)
		habits.DELETE("/:id", cfg.Habits.DeleteHabit)
		habits.POST("/:id/checkin", cfg.Habits.CheckIn)
		habits.POST("/:id/uncheck", cfg.Habits.Uncheck)
		habits.GET("/:id/streak", cfg.Habits.GetStreak)
	}

	goals := api.Group("/goals")
	{
		goals.POST("", cfg.Goals.CreateGoal)
		goals.GET("", cfg.Goals.GetGoals)
		goals.PUT("/:id", cfg.Goals.UpdateGoal)
		goals.DELETE("/:id", cfg.Goals.DeleteGoal)
		goals.GET("/:id/progress", cfg.Goals.GetGoalProgress)
	}

	api.GET("/analytics", cfg.Analytics.GetSnapshot)

	return router
}

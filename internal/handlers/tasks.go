package handlers

import (
	"net/http"
	"strconv"
	"time"

	"productivity-tracker/backend/internal/models"
	"productivity-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var taskInput struct {
		Title             string   `json:"title" binding:"required"`
		Description       string   `json:"description"`
		Priority          string   `json:"priority"`
		DueDate           string   `json:"due_date"`
		GoalID            string   `json:"goal_id"`
		TimeSpent         *float64 `json:"time_spent"`
		Recurrence        string   `json:"recurrence"`
		RecurrenceEndDate string   `json:"recurrence_end_date"`
	}
	if err := c.ShouldBindJSON(&taskInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.TaskInput{
		Title:       taskInput.Title,
		Description: taskInput.Description,
		Priority:    models.Priority(taskInput.Priority),
		TimeSpent:   taskInput.TimeSpent,
		Recurrence:  models.Recurrence(taskInput.Recurrence),
	}

	var ok bool
	if in.DueDate, ok = parseDateField(c, taskInput.DueDate, "due_date"); !ok {
		return
	}
	if in.RecurrenceEndDate, ok = parseDateField(c, taskInput.RecurrenceEndDate, "recurrence_end_date"); !ok {
		return
	}
	if in.GoalID, ok = parseUUIDField(c, taskInput.GoalID, "goal_id"); !ok {
		return
	}

	task, err := h.tasks.Create(in)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial update. Omitted fields are unchanged; sending
// an empty string for due_date, goal_id, recurrence, or recurrence_end_date
// clears that field.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))

	var taskInput struct {
		Title             *string  `json:"title"`
		Description       *string  `json:"description"`
		Priority          *string  `json:"priority"`
		DueDate           *string  `json:"due_date"`
		GoalID            *string  `json:"goal_id"`
		TimeSpent         *float64 `json:"time_spent"`
		Recurrence        *string  `json:"recurrence"`
		RecurrenceEndDate *string  `json:"recurrence_end_date"`
	}
	if err := c.ShouldBindJSON(&taskInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.TaskUpdate{
		Title:       taskInput.Title,
		Description: taskInput.Description,
		TimeSpent:   taskInput.TimeSpent,
	}
	if taskInput.Priority != nil {
		p := models.Priority(*taskInput.Priority)
		in.Priority = &p
	}
	if taskInput.Recurrence != nil {
		r := models.Recurrence(*taskInput.Recurrence)
		in.Recurrence = &r
	}

	if taskInput.DueDate != nil {
		if *taskInput.DueDate == "" {
			in.ClearDueDate = true
		} else {
			var ok bool
			if in.DueDate, ok = parseDateField(c, *taskInput.DueDate, "due_date"); !ok {
				return
			}
		}
	}
	if taskInput.RecurrenceEndDate != nil {
		if *taskInput.RecurrenceEndDate == "" {
			in.ClearRecurrenceEndDate = true
		} else {
			var ok bool
			if in.RecurrenceEndDate, ok = parseDateField(c, *taskInput.RecurrenceEndDate, "recurrence_end_date"); !ok {
				return
			}
		}
	}
	if taskInput.GoalID != nil {
		if *taskInput.GoalID == "" {
			in.ClearGoalID = true
		} else {
			var ok bool
			if in.GoalID, ok = parseUUIDField(c, *taskInput.GoalID, "goal_id"); !ok {
				return
			}
		}
	}

	task, err := h.tasks.Update(id, in)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) ToggleTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	task, err := h.tasks.Toggle(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	if err := h.tasks.Delete(id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// GetTasks lists tasks. view=all includes templates and not-completed
// records; the default is the actionable view. Filter query params narrow
// the result further.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	var (
		tasks []models.Task
		err   error
	)

	if hasFilterParams(c) {
		tasks, err = h.tasks.Filter(buildTaskFilter(c))
	} else if c.DefaultQuery("view", "active") == "all" {
		tasks, err = h.tasks.List()
	} else {
		tasks, err = h.tasks.Active()
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func (h *TaskHandler) SearchTasks(c *gin.Context) {
	tasks, err := h.tasks.Search(c.Query("q"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func (h *TaskHandler) GetTasksDue(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if err != nil || hours <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be a positive integer"})
		return
	}
	tasks, err := h.tasks.DueWithin(hours)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func hasFilterParams(c *gin.Context) bool {
	for _, key := range []string{"priority", "completed", "due_date", "goal_id"} {
		if _, ok := c.GetQuery(key); ok {
			return true
		}
	}
	return false
}

func buildTaskFilter(c *gin.Context) services.TaskFilter {
	var f services.TaskFilter
	if v, ok := c.GetQuery("priority"); ok {
		p := models.Priority(v)
		f.Priority = &p
	}
	if v, ok := c.GetQuery("completed"); ok {
		completed := v == "true"
		f.Completed = &completed
	}
	if v, ok := c.GetQuery("due_date"); ok {
		if day, err := models.ParseDay(v); err == nil {
			f.DueDate = &day
		}
	}
	if v, ok := c.GetQuery("goal_id"); ok {
		if gid := uuid.FromStringOrNil(v); gid != uuid.Nil {
			f.GoalID = &gid
		}
	}
	return f
}

// parseDateField parses an optional YYYY-MM-DD field, writing a 400 response
// on bad input. The bool result reports whether to keep handling.
func parseDateField(c *gin.Context, value, name string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	day, err := models.ParseDay(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ", expected YYYY-MM-DD"})
		return nil, false
	}
	return &day, true
}

func parseUUIDField(c *gin.Context, value, name string) (*uuid.UUID, bool) {
	if value == "" {
		return nil, true
	}
	id, err := uuid.FromString(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &id, true
}

package handlers

import (
	"net/http"

	"productivity-tracker/backend/internal/models"
	"productivity-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type HabitHandler struct {
	habits *services.HabitService
}

func NewHabitHandler(habits *services.HabitService) *HabitHandler {
	return &HabitHandler{habits: habits}
}

func (h *HabitHandler) CreateHabit(c *gin.Context) {
	var habitInput struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		Frequency   string `json:"frequency"`
		GoalID      string `json:"goal_id"`
	}
	if err := c.ShouldBindJSON(&habitInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.HabitInput{
		Title:       habitInput.Title,
		Description: habitInput.Description,
		Priority:    models.Priority(habitInput.Priority),
		Frequency:   models.Frequency(habitInput.Frequency),
	}
	var ok bool
	if in.GoalID, ok = parseUUIDField(c, habitInput.GoalID, "goal_id"); !ok {
		return
	}

	habit, err := h.habits.Create(in)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) UpdateHabit(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))

	var habitInput struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Priority    *string `json:"priority"`
		Frequency   *string `json:"frequency"`
		GoalID      *string `json:"goal_id"`
	}
	if err := c.ShouldBindJSON(&habitInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.HabitUpdate{
		Title:       habitInput.Title,
		Description: habitInput.Description,
	}
	if habitInput.Priority != nil {
		p := models.Priority(*habitInput.Priority)
		in.Priority = &p
	}
	if habitInput.Frequency != nil {
		f := models.Frequency(*habitInput.Frequency)
		in.Frequency = &f
	}
	if habitInput.GoalID != nil {
		if *habitInput.GoalID == "" {
			in.ClearGoalID = true
		} else {
			var ok bool
			if in.GoalID, ok = parseUUIDField(c, *habitInput.GoalID, "goal_id"); !ok {
				return
			}
		}
	}

	habit, err := h.habits.Update(id, in)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	if err := h.habits.Delete(id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *HabitHandler) GetHabits(c *gin.Context) {
	var habits []models.Habit
	if q, ok := c.GetQuery("q"); ok {
		habits = h.habits.Search(q)
	} else if hasHabitFilterParams(c) {
		habits = h.habits.Filter(buildHabitFilter(c))
	} else {
		habits = h.habits.List()
	}
	c.JSON(http.StatusOK, gin.H{
		"habits": habits,
		"total":  len(habits),
	})
}

// CheckIn records a check-in for the given day, defaulting to today.
func (h *HabitHandler) CheckIn(c *gin.Context) {
	h.mutateCheckIns(c, h.habits.CheckIn)
}

// Uncheck removes a check-in for the given day, defaulting to today.
func (h *HabitHandler) Uncheck(c *gin.Context) {
	h.mutateCheckIns(c, h.habits.Uncheck)
}

func (h *HabitHandler) mutateCheckIns(c *gin.Context, op func(uuid.UUID, string) (models.Habit, error)) {
	id := uuid.FromStringOrNil(c.Param("id"))

	var body struct {
		Date string `json:"date"`
	}
	// An empty body means "today".
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	habit, err := op(id, body.Date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) GetStreak(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	streak, err := h.habits.Streak(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"habit_id": id,
		"streak":   streak,
	})
}

func hasHabitFilterParams(c *gin.Context) bool {
	for _, key := range []string{"priority", "frequency", "goal_id"} {
		if _, ok := c.GetQuery(key); ok {
			return true
		}
	}
	return false
}

func buildHabitFilter(c *gin.Context) services.HabitFilter {
	var f services.HabitFilter
	if v, ok := c.GetQuery("priority"); ok {
		p := models.Priority(v)
		f.Priority = &p
	}
	if v, ok := c.GetQuery("frequency"); ok {
		fr := models.Frequency(v)
		f.Frequency = &fr
	}
	if v, ok := c.GetQuery("goal_id"); ok {
		if gid := uuid.FromStringOrNil(v); gid != uuid.Nil {
			f.GoalID = &gid
		}
	}
	return f
}

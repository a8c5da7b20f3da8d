package handlers

import (
	"net/http"

	"productivity-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type GoalHandler struct {
	goals *services.GoalService
}

func NewGoalHandler(goals *services.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

func (h *GoalHandler) CreateGoal(c *gin.Context) {
	var goalInput struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description"`
		TimeGoal    *float64 `json:"time_goal"`
	}
	if err := c.ShouldBindJSON(&goalInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.goals.Create(services.GoalInput{
		Title:       goalInput.Title,
		Description: goalInput.Description,
		TimeGoal:    goalInput.TimeGoal,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// UpdateGoal applies a partial update. Sending time_goal as 0 clears the
// time budget.
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))

	var goalInput struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		TimeGoal    *float64 `json:"time_goal"`
	}
	if err := c.ShouldBindJSON(&goalInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.GoalUpdate{
		Title:       goalInput.Title,
		Description: goalInput.Description,
	}
	if goalInput.TimeGoal != nil {
		if *goalInput.TimeGoal == 0 {
			in.ClearTimeGoal = true
		} else {
			in.TimeGoal = goalInput.TimeGoal
		}
	}

	goal, err := h.goals.Update(id, in)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	if err := h.goals.Delete(id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *GoalHandler) GetGoals(c *gin.Context) {
	goals := h.goals.List()
	c.JSON(http.StatusOK, gin.H{
		"goals": goals,
		"total": len(goals),
	})
}

func (h *GoalHandler) GetGoalProgress(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	progress, err := h.goals.Progress(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/matchwise/backend/internal/services"
	"github.com/matchwise/backend/pkg/response"
)

type SchedulerHandler struct {
	scheduler *services.Scheduler
}

func NewSchedulerHandler(scheduler *services.Scheduler) *SchedulerHandler {
	return &SchedulerHandler{scheduler: scheduler}
}

// GET /api/scheduler/jobs
func (h *SchedulerHandler) ListJobs(c *gin.Context) {
	response.Success(c, h.scheduler.Jobs())
}

// RunJob triggers a job manually. It shares the in-flight guard with cron,
// so a run already in progress yields 409. A started run finishes even if
// the client goes away.
// POST /api/scheduler/jobs/:name/run
func (h *SchedulerHandler) RunJob(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	report, err := h.scheduler.RunJob(ctx, c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, report)
}

package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/matchwise/backend/internal/services"
	"github.com/matchwise/backend/pkg/response"
)

type MatchHandler struct {
	matchService *services.MatchService
	store        *services.GormMatchStore
}

func NewMatchHandler(matchService *services.MatchService, store *services.GormMatchStore) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
		store:        store,
	}
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+param)
		return 0, false
	}
	return uint(id), true
}

// Rebuild recomputes the matches of one project on demand.
// POST /api/projects/:id/matches/rebuild
func (h *MatchHandler) Rebuild(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.matchService.Rebuild(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, result)
}

// ListByProject returns all stored matches of a project, best score first.
// GET /api/projects/:id/matches
func (h *MatchHandler) ListByProject(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	matches, err := h.store.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, matches)
}

// GET /api/matches
func (h *MatchHandler) List(c *gin.Context) {
	var req services.MatchListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.store.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Paginated(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// GET /api/matches/:id
func (h *MatchHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	match, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, match)
}

// DELETE /api/matches/:id
func (h *MatchHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "deleted"})
}

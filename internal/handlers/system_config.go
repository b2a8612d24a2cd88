package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/matchwise/backend/internal/services"
	"github.com/matchwise/backend/pkg/response"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(configService *services.SystemConfigService) *SystemConfigHandler {
	return &SystemConfigHandler{configService: configService}
}

func (h *SystemConfigHandler) List(c *gin.Context) {
	configs, err := h.configService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, configs)
}

func (h *SystemConfigHandler) Get(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, cfg)
}

// Update creates or replaces a tunable. Changes apply from the next rebuild.
func (h *SystemConfigHandler) Update(c *gin.Context) {
	var req services.UpdateSystemConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cfg, err := h.configService.Set(c.Request.Context(), c.Param("key"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, cfg)
}

package handler

import (
	"cambiototal/internal/adapter/http/dto"
	"cambiototal/internal/adapter/http/middleware"
	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports"
	"cambiototal/pkg/apperror"
	"cambiototal/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles settings and user management endpoints.
type AdminHandler struct {
	settingsSvc ports.SettingsService
	userSvc     ports.UserService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(settingsSvc ports.SettingsService, userSvc ports.UserService) *AdminHandler {
	return &AdminHandler{settingsSvc: settingsSvc, userSvc: userSvc}
}

// GetSettings handles GET /api/v1/admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	values, err := h.settingsSvc.Raw(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"values": values})
}

// UpdateSettings handles PUT /api/v1/admin/settings.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.settingsSvc.Update(c.Request.Context(), req.Values); err != nil {
		response.Error(c, err)
		return
	}

	values, err := h.settingsSvc.Raw(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"values": values})
}

// ListUsers handles GET /api/v1/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserResponse{
			Username: u.Username,
			Name:     u.Name,
			Role:     string(u.Role),
		})
	}
	response.OK(c, out)
}

// CreateUser handles POST /api/v1/admin/users.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.userSvc.Create(c.Request.Context(), ports.CreateUserRequest{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.UserResponse{
		Username: user.Username,
		Name:     user.Name,
		Role:     string(user.Role),
	})
}

// DeleteUser handles DELETE /api/v1/admin/users/:username.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	username := c.Param("username")
	if err := h.userSvc.Delete(c.Request.Context(), middleware.Username(c), username); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": username})
}

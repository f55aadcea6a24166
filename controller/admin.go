package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ayushhkrr/PromptVerse/logic"
	"github.com/ayushhkrr/PromptVerse/models"
)

// AdminController handles moderation HTTP requests. Routes are additionally
// gated by the admin role middleware.
type AdminController struct {
	admin *logic.AdminLogic
}

func NewAdminController(admin *logic.AdminLogic) *AdminController {
	return &AdminController{admin: admin}
}

// Stats handles GET /api/v1/admin/stats.
func (c *AdminController) Stats(ctx *gin.Context) {
	stats, err := c.admin.Stats(ctx)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /api/v1/admin/users.
func (c *AdminController) ListUsers(ctx *gin.Context) {
	page, limit := pagination(ctx, 100)
	users, total, err := c.admin.ListUsers(ctx, page, limit)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": paginationBody(page, limit, total),
	})
}

// ListPrompts handles GET /api/v1/admin/prompts.
func (c *AdminController) ListPrompts(ctx *gin.Context) {
	page, limit := pagination(ctx, 100)
	prompts, total, err := c.admin.ListPrompts(ctx, page, limit)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"prompts":    prompts,
		"pagination": paginationBody(page, limit, total),
	})
}

// SetUserStatus handles PATCH /api/v1/admin/users/:id/status.
func (c *AdminController) SetUserStatus(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	target, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	type Request struct {
		Status models.Status `json:"status" binding:"required"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := c.admin.SetUserStatus(ctx, caller, target, req.Status)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "user status updated successfully", "user": user})
}

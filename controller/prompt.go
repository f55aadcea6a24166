package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ayushhkrr/PromptVerse/logic"
	"github.com/ayushhkrr/PromptVerse/models"
)

// PromptController handles catalog HTTP requests.
type PromptController struct {
	prompts  *logic.PromptLogic
	previews *logic.PreviewLogic
}

func NewPromptController(prompts *logic.PromptLogic, previews *logic.PreviewLogic) *PromptController {
	return &PromptController{prompts: prompts, previews: previews}
}

// Create handles POST /api/v1/prompts (multipart, thumbnail file required).
func (c *PromptController) Create(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	price, err := strconv.ParseInt(ctx.PostForm("price"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "price must be an integer amount in cents"})
		return
	}
	in := logic.CreatePromptInput{
		Title:       ctx.PostForm("title"),
		Body:        ctx.PostForm("body"),
		Description: ctx.PostForm("description"),
		Tags:        ctx.PostForm("tags"),
		SampleInput: ctx.PostForm("sample_input"),
		Price:       price,
		Type:        models.PromptType(ctx.PostForm("type")),
	}

	file, err := ctx.FormFile("thumbnail")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "thumbnail image is required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "could not read thumbnail"})
		return
	}
	defer f.Close()
	in.ThumbnailName = file.Filename
	in.Thumbnail = f

	prompt, err := c.prompts.Create(ctx, caller, in)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "new prompt created successfully and is pending approval",
		"prompt":  prompt,
	})
}

// ListApproved handles GET /api/v1/prompts (public).
func (c *PromptController) ListApproved(ctx *gin.Context) {
	page, limit := pagination(ctx, 10)
	prompts, total, err := c.prompts.ListApproved(ctx, page, limit, ctx.Query("tag"))
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"prompts":    prompts,
		"pagination": paginationBody(page, limit, total),
	})
}

// ListMine handles GET /api/v1/prompts/mine.
func (c *PromptController) ListMine(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	prompts, err := c.prompts.ListMine(ctx, caller)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"prompts": prompts})
}

// Get handles GET /api/v1/prompts/:id (public, approved listings only).
func (c *PromptController) Get(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}
	prompt, err := c.prompts.Get(ctx, id)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"prompt": prompt})
}

// Update handles PATCH /api/v1/prompts/:id.
func (c *PromptController) Update(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}
	var req logic.UpdatePromptInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prompt, err := c.prompts.Update(ctx, caller, id, req)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "prompt updated successfully", "prompt": prompt})
}

// Delete handles DELETE /api/v1/prompts/:id.
func (c *PromptController) Delete(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}
	if err := c.prompts.Delete(ctx, caller, id); err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "prompt deleted successfully"})
}

// SetStatus handles PATCH /api/v1/prompts/:id/status (admin).
func (c *PromptController) SetStatus(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}
	type Request struct {
		Status models.ModerationStatus `json:"status" binding:"required"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prompt, err := c.prompts.SetStatus(ctx, caller, id, req.Status)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "prompt status updated", "prompt": prompt})
}

// Preview handles GET /api/v1/prompts/:id/preview (public). Output shape
// depends on the prompt type: completion text or an image URL.
func (c *PromptController) Preview(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}
	prompt, preview, err := c.previews.Preview(ctx, id)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"prompt": prompt, "preview": preview})
}

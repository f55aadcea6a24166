package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ayushhkrr/PromptVerse/logic"
	"github.com/ayushhkrr/PromptVerse/middleware"
	"github.com/ayushhkrr/PromptVerse/models"
)

// currentUser pulls the caller resolved by the auth middleware.
func currentUser(ctx *gin.Context) (*models.User, bool) {
	v, ok := ctx.Get(middleware.UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// respondErr maps logic error kinds onto HTTP statuses.
func respondErr(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, logic.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, logic.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, logic.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, logic.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, logic.ErrUpstream):
		status = http.StatusBadGateway
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

// pagination parses ?page= and ?limit= with defaults.
func pagination(ctx *gin.Context, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return page, limit
}

// paginationBody is the envelope list endpoints return alongside results.
func paginationBody(page, limit int, total int64) gin.H {
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return gin.H{
		"current_page": page,
		"total_pages":  totalPages,
		"total":        total,
		"limit":        limit,
	}
}

package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ayushhkrr/PromptVerse/logic"
)

// UserController handles identity and profile HTTP requests.
type UserController struct {
	users *logic.UserLogic
}

func NewUserController(users *logic.UserLogic) *UserController {
	return &UserController{users: users}
}

// Register handles POST /api/v1/users/register.
func (c *UserController) Register(ctx *gin.Context) {
	var req logic.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, token, err := c.users.Register(ctx, req)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "user registration successful",
		"token":   token,
		"user":    user,
	})
}

// Login handles POST /api/v1/users/login.
func (c *UserController) Login(ctx *gin.Context) {
	type Request struct {
		Login    string `json:"login" binding:"required"` // username or email
		Password string `json:"password" binding:"required"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, token, err := c.users.Login(ctx, req.Login, req.Password)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// GoogleLogin handles GET /api/v1/users/google/login.
func (c *UserController) GoogleLogin(ctx *gin.Context) {
	state := uuid.NewString()
	ctx.Redirect(http.StatusTemporaryRedirect, c.users.GoogleAuthURL(state))
}

// GoogleCallback handles GET /api/v1/users/google/callback.
func (c *UserController) GoogleCallback(ctx *gin.Context) {
	code := ctx.Query("code")
	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}
	user, token, err := c.users.LoginWithGoogle(ctx, code)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me handles GET /api/v1/users/me.
func (c *UserController) Me(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

// Update handles PATCH /api/v1/users/:id.
func (c *UserController) Update(ctx *gin.Context) {
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
	var req logic.UpdateProfileInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := c.users.UpdateProfile(ctx, caller, target, req)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "user updated successfully", "user": user})
}

// Delete handles DELETE /api/v1/users/:id.
func (c *UserController) Delete(ctx *gin.Context) {
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
	if err := c.users.Delete(ctx, caller, target); err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// BecomeSeller handles PATCH /api/v1/users/become-seller.
func (c *UserController) BecomeSeller(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := c.users.BecomeSeller(ctx, caller)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "you are now a seller", "user": user})
}

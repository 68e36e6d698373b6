package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/app/models/dto"
	"github.com/yigit/lecturealert/internal/app/shell"
	"github.com/yigit/lecturealert/internal/middleware"
)

// ShellController serves navigation and the page routes
type ShellController struct{}

// NewShellController creates a new ShellController
func NewShellController() *ShellController {
	return &ShellController{}
}

// Navigation handles GET /shell/navigation
func (c *ShellController) Navigation(ctx *gin.Context) {
	identity := middleware.IdentityFrom(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(navigationFor(identity), ""))
}

// Page resolves the request path to a page descriptor or a redirect
func (c *ShellController) Page(ctx *gin.Context) {
	identity := middleware.IdentityFrom(ctx)
	decision := shell.Resolve(ctx.Request.URL.Path, identity)
	if decision.Page == nil {
		ctx.Redirect(http.StatusFound, decision.Redirect)
		return
	}

	page := decision.Page
	resp := dto.PageResponse{
		Path:        page.Path,
		Title:       page.Title,
		Placeholder: page.Placeholder,
	}
	if page.Placeholder {
		resp.Message = page.Message()
	}
	if identity != nil {
		resp.Navigation = navigationFor(identity)
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

func navigationFor(identity *models.Identity) *dto.NavigationResponse {
	if identity == nil {
		return &dto.NavigationResponse{Items: []shell.NavItem{}}
	}
	return &dto.NavigationResponse{
		User:  dto.NewUserResponse(identity),
		Items: shell.Navigation(identity.Role),
	}
}

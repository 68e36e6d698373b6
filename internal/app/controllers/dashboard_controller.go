package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/lecturealert/internal/app/dashboard"
	"github.com/yigit/lecturealert/internal/app/models/dto"
	"github.com/yigit/lecturealert/internal/middleware"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
)

// DashboardController serves the role dashboard of the session identity
type DashboardController struct {
	registry *dashboard.Registry
	location *time.Location
	logger   zerolog.Logger
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(registry *dashboard.Registry, location *time.Location, logger zerolog.Logger) *DashboardController {
	if location == nil {
		location = time.Local
	}
	return &DashboardController{
		registry: registry,
		location: location,
		logger:   logger,
	}
}

// GetDashboard handles GET /dashboard
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	provider := middleware.ProviderFrom(ctx)
	view := c.registry.View(provider.ID(), provider)

	var (
		snap  dashboard.Snapshot
		fresh bool
		err   error
	)
	// A concurrent request or identity change can supersede a refresh; retry once
	for attempt := 0; attempt < 2; attempt++ {
		snap, fresh, err = view.Refresh(ctx.Request.Context())
		if err == nil && snap.Generation != provider.Generation() {
			err = dashboard.ErrSuperseded
		}
		if !errors.Is(err, dashboard.ErrSuperseded) {
			break
		}
	}

	switch {
	case errors.Is(err, dashboard.ErrSuperseded):
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBackendUnavailable, "Session changed while loading, please retry")
		ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
		return
	case err != nil:
		if !errors.Is(err, apperrors.ErrNoIdentity) {
			c.logger.Warn().Err(err).Str("session", provider.ID()).Msg("Dashboard refresh failed")
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	identity, _ := provider.Identity()
	if identity == nil {
		middleware.HandleAPIError(ctx, apperrors.ErrNoIdentity)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewDashboardResponse(*identity, snap, fresh, c.location), ""))
}

// Package controllers handles HTTP request handling
package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/lecturealert/internal/app/models/dto"
	"github.com/yigit/lecturealert/internal/app/session"
	"github.com/yigit/lecturealert/internal/middleware"
	"github.com/yigit/lecturealert/internal/pkg/validation"
)

// EmailVerifier confirms pending accounts
type EmailVerifier interface {
	VerifyEmail(ctx context.Context, token string) error
}

// AuthController serves the sign-in and sign-up screens and the session state
type AuthController struct {
	verifier EmailVerifier
	logger   zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(verifier EmailVerifier, logger zerolog.Logger) *AuthController {
	return &AuthController{
		verifier: verifier,
		logger:   logger,
	}
}

// SignIn handles POST /auth/sign-in
func (c *AuthController) SignIn(ctx *gin.Context) {
	var req dto.SignInRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	provider := middleware.ProviderFrom(ctx)
	identity, err := provider.SignIn(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("userID", identity.ID).Str("role", string(identity.Role)).Msg("User signed in")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewSessionResponse(provider.Current()), session.MsgSignedIn))
}

// SignUp handles POST /auth/sign-up. The account stays pending until its email is verified.
func (c *AuthController) SignUp(ctx *gin.Context) {
	var req dto.SignUpRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	form := validation.SignUpForm{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	}
	if err := middleware.ProviderFrom(ctx).SignUp(ctx.Request.Context(), form); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("email", req.Email).Msg("Pending account created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(nil, session.MsgSignedUp))
}

// SignOut handles POST /auth/sign-out
func (c *AuthController) SignOut(ctx *gin.Context) {
	provider := middleware.ProviderFrom(ctx)
	if err := provider.SignOut(ctx.Request.Context()); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewSessionResponse(provider.Current()), session.MsgSignedOut))
}

// Session handles GET /auth/session
func (c *AuthController) Session(ctx *gin.Context) {
	state := middleware.ProviderFrom(ctx).Current()
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewSessionResponse(state), ""))
}

// VerifyEmail handles GET /auth/verify-email?token=
func (c *AuthController) VerifyEmail(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Verification token is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.verifier.VerifyEmail(ctx.Request.Context(), token); err != nil {
		c.logger.Info().Err(err).Msg("Email verification failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Email verified successfully. You can now sign in."))
}

package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opensupplyhub/oshub/internal/config"
	"github.com/opensupplyhub/oshub/internal/pkg/jwt"
	"github.com/opensupplyhub/oshub/internal/pkg/response"
	apperrors "github.com/opensupplyhub/oshub/pkg/errors"
)

type Handler struct {
	repo   *Repository
	cfg    *config.Config
	jwtCfg *jwt.Config
}

func NewHandler(repo *Repository, cfg *config.Config) *Handler {
	jwtCfg := jwt.DefaultConfig(cfg.JWTSecret)
	jwtCfg.AccessExpiry = time.Duration(cfg.JWTExpireHours) * time.Hour

	return &Handler{
		repo:   repo,
		cfg:    cfg,
		jwtCfg: jwtCfg,
	}
}

// GoogleLogin godoc
// @Summary Sign in with Google
// @Description Validates a Google ID token and returns an access token, creating the account on first login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleAuthRequest true "Google ID token"
// @Success 200 {object} response.SuccessResponse{data=AuthResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /auth/google [post]
func (h *Handler) GoogleLogin(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	ctx := c.Request.Context()

	googleUser, err := VerifyGoogleToken(ctx, req.GoogleIDToken, h.cfg.GoogleClientID)
	if err != nil {
		response.Unauthorized(c, "Invalid Google token", "INVALID_GOOGLE_TOKEN")
		return
	}
	if !googleUser.EmailVerified {
		response.Unauthorized(c, "Google account email is not verified", "EMAIL_NOT_VERIFIED")
		return
	}

	user, err := h.repo.GetUserByGoogleID(ctx, googleUser.UID)
	if err != nil {
		response.InternalServerError(c, "Failed to look up user", "DATABASE_ERROR")
		return
	}

	if user == nil {
		user = &User{
			GoogleID:        googleUser.UID,
			Email:           googleUser.Email,
			Name:            googleUser.Name,
			ContributorName: googleUser.Name,
			Role:            RoleUser,
		}
		if err := h.repo.CreateUser(ctx, user); err != nil {
			// Two first logins racing can both miss the lookup; the
			// unique index decides the winner.
			if errors.Is(err, apperrors.ErrDuplicate) {
				response.Conflict(c, "Account already exists", "DUPLICATE_ACCOUNT")
				return
			}
			response.InternalServerError(c, "Failed to create user", "DATABASE_ERROR")
			return
		}
	}

	_ = h.repo.TouchLastLogin(ctx, user.ID)

	token, err := jwt.GenerateTokenWithRole(user.ID.Hex(), user.Email, user.Role, h.jwtCfg)
	if err != nil {
		response.InternalServerError(c, "Failed to generate token", "TOKEN_ERROR")
		return
	}

	response.Success(c, AuthResponse{
		User:        user,
		AccessToken: token,
	})
}

// Me godoc
// @Summary Get current user profile
// @Description Returns the authenticated user, including claimed facility IDs
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse{data=User}
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.repo.GetUserByID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.InternalServerError(c, "Failed to look up user", "DATABASE_ERROR")
		return
	}
	if user == nil {
		response.NotFound(c, "User not found", "USER_NOT_FOUND")
		return
	}

	response.Success(c, user)
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Updates the authenticated user's display and contributor names
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.SuccessResponse{data=User}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/profile [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := ValidateUpdateProfile(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if contributor := strings.TrimSpace(req.ContributorName); contributor != "" {
		updates["contributorName"] = contributor
	}
	if len(updates) == 0 {
		response.BadRequest(c, "Nothing to update", "EMPTY_UPDATE")
		return
	}

	userID := c.GetString("userID")
	if err := h.repo.UpdateUser(c.Request.Context(), userID, updates); err != nil {
		response.InternalServerError(c, "Failed to update profile", "DATABASE_ERROR")
		return
	}

	user, err := h.repo.GetUserByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		response.InternalServerError(c, "Failed to load updated profile", "DATABASE_ERROR")
		return
	}

	response.Success(c, user)
}

// RefreshToken godoc
// @Summary Refresh access token
// @Description Issues a fresh access token from a still-valid one
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	fields := strings.Fields(authHeader)
	tokenString := authHeader
	if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
		tokenString = fields[1]
	}

	token, err := jwt.RefreshToken(tokenString, h.jwtCfg)
	if err != nil {
		response.Unauthorized(c, "Invalid token", "INVALID_TOKEN")
		return
	}

	response.Success(c, gin.H{"accessToken": token})
}

// Logout godoc
// @Summary Log out
// @Description Stateless logout; the client discards its token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	response.Success(c, gin.H{"message": "Logged out"})
}

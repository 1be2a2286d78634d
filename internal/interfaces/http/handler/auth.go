package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appidentity "github.com/worldref/backend/internal/application/identity"
	"github.com/worldref/backend/internal/domain/identity"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	resolverService *appidentity.ResolverService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(resolverService *appidentity.ResolverService) *AuthHandler {
	return &AuthHandler{
		resolverService: resolverService,
	}
}

// Resolve godoc
// @Summary      Resolve an identity-provider credential
// @Description  Exchange a provider sign-in payload for an account and session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResolveRequest true "Provider credential"
// @Success      200 {object} APIResponse[ResolveResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /auth/resolve [post]
func (h *AuthHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.resolverService.ResolveOrCreate(c.Request.Context(), appidentity.ResolveInput{
		Provider:          identity.Provider(req.Provider),
		NullifierHash:     req.NullifierHash,
		VerificationLevel: identity.VerificationLevel(req.VerificationLevel),
		GoogleUID:         req.GoogleUID,
		Email:             req.Email,
		DisplayName:       req.DisplayName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ResolveResponse{
		Token: TokenResponse{
			AccessToken: result.AccessToken,
			ExpiresAt:   result.ExpiresAt.Format(time.RFC3339),
			TokenType:   result.TokenType,
		},
		Account: toAccountResponse(result.Account),
		IsNew:   result.IsNew,
	})
}

// Me godoc
// @Summary      Get the authenticated account
// @Description  Returns the account behind the presented session token
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[AccountResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	info, err := h.resolverService.GetAccount(c.Request.Context(), appidentity.GetAccountInput{
		AccountID: accountID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAccountResponse(*info))
}

func toAccountResponse(info appidentity.AccountInfo) AccountResponse {
	return AccountResponse{
		ID:                info.ID.String(),
		Provider:          string(info.Provider),
		Verified:          info.Verified,
		VerificationLevel: string(info.VerificationLevel),
		Email:             info.Email,
		DisplayName:       info.DisplayName,
		AvatarURL:         info.AvatarURL,
		CreatedAt:         info.CreatedAt.Format(time.RFC3339),
	}
}

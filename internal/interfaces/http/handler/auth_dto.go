package handler

// ResolveRequest carries the identity-provider callback payload
// @Description Credential presented after a successful provider sign-in
type ResolveRequest struct {
	Provider          string `json:"provider" binding:"required" example:"world_id" enums:"world_id,google"`
	NullifierHash     string `json:"nullifier_hash" example:"0x2a8f..."`
	VerificationLevel string `json:"verification_level" example:"orb" enums:"orb,device"`
	GoogleUID         string `json:"google_uid" example:"108256349573"`
	Email             string `json:"email" example:"alice@example.com"`
	DisplayName       string `json:"display_name" example:"Alice"`
}

// TokenResponse represents an issued session token
// @Description Session token details
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at" example:"2026-08-31T12:00:00Z"`
	TokenType   string `json:"token_type" example:"Bearer"`
}

// AccountResponse represents an account in API responses
// @Description Account details returned by the API
type AccountResponse struct {
	ID                string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Provider          string `json:"provider" example:"world_id" enums:"world_id,google"`
	Verified          bool   `json:"verified" example:"true"`
	VerificationLevel string `json:"verification_level,omitempty" example:"orb" enums:"orb,device"`
	Email             string `json:"email,omitempty" example:"alice@example.com"`
	DisplayName       string `json:"display_name,omitempty" example:"Alice"`
	AvatarURL         string `json:"avatar_url,omitempty"`
	CreatedAt         string `json:"created_at" example:"2026-08-31T12:00:00Z"`
}

// ResolveResponse is returned after an account is resolved or created
// @Description Resolved account with its session token
type ResolveResponse struct {
	Token   TokenResponse   `json:"token"`
	Account AccountResponse `json:"account"`
	IsNew   bool            `json:"is_new" example:"false"`
}

package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID        uuid.UUID
	Role          enums.Role
	CooperativeID *uuid.UUID
	RetailerID    *uuid.UUID
	JTI           string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID        uuid.UUID  `json:"user_id"`
	Role          enums.Role `json:"role"`
	CooperativeID *uuid.UUID `json:"cooperative_id,omitempty"`
	RetailerID    *uuid.UUID `json:"retailer_id,omitempty"`
	jwt.RegisteredClaims
}

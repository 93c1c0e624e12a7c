package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// PrincipalKind tags which store a token subject lives in.
type PrincipalKind string

const (
	PrincipalTenantAdmin PrincipalKind = "tenant_admin"
	PrincipalDeveloper   PrincipalKind = "developer"
)

// RoleDeveloper is the only role carried by developer tokens. Tenant accounts may not use it.
const RoleDeveloper = "developer"

// Claims is the JWT payload for both principal kinds. CenterID is omitted for developers.
type Claims struct {
	Login    string        `json:"login"`
	Role     string        `json:"role"`
	CenterID *int64        `json:"centerId,omitempty"`
	Kind     PrincipalKind `json:"kind"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type DeveloperLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID             int64          `json:"id"`
	Login          string         `json:"login"`
	Role           string         `json:"role"`
	DisplayName    string         `json:"displayName"`
	CenterID       int64          `json:"centerId"`
	PlatformAccess PlatformAccess `json:"platformAccess"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type DeveloperResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

type DeveloperLoginResponse struct {
	Token   string            `json:"token"`
	DevUser DeveloperResponse `json:"devUser"`
}

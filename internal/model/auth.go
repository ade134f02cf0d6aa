package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HostClaims are JWT claims for host authentication
type HostClaims struct {
	HostID string `json:"hostId"`
	jwt.RegisteredClaims
}

// ParticipantClaims are JWT claims for event-scoped participant tokens
type ParticipantClaims struct {
	EventID       string `json:"eventId"`
	ParticipantID string `json:"participantId"`
	jwt.RegisteredClaims
}

// RegisterRequest is the request body for host registration
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the request body for host login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token  string `json:"token"`
	HostID string `json:"hostId"`
}

// AdminSession is a Redis-backed admin panel session
type AdminSession struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminLoginRequest is the request body for the admin panel login
type AdminLoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are JWT claims for player tokens; identity for every
// websocket command comes from here, never from command payloads
type UserClaims struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for guest login
type LoginRequest struct {
	DisplayName string `json:"displayName"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token string `json:"token"`
	UID   string `json:"uid"`
}

package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are JWT claims for authenticated users
type UserClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// RegisterRequest is the request body for sign-up
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for sign-in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful register or login
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the verified caller identity carried on every authenticated
// request. The ledger core trusts it completely and performs no credential
// checks of its own.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	IsAdmin      bool   `json:"is_admin"`
	TokenVersion int    `json:"token_version"`
}

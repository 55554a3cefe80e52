package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/bidhaus/goapi/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"`
	jwt.StandardClaims
}

type AuthUsecase interface {
	// SignToken validates the nonce signature for address and issues an
	// access token.
	SignToken(ctx ctx.Ctx, address Address, signature string) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (address string, err error)
}

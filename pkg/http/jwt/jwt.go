// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "taskflow"

	typeAccess  = "access"
	typeRefresh = "refresh"
)

var ErrWrongTokenType = errors.New("wrong token type")

type AuthClaims struct {
	UserId    string `json:"userId"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is returned by GenToken. SessionId is the jti shared by both tokens.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	SessionId    string `json:"-"`
}

// GenToken signs an access token and a refresh token for userId.
func GenToken(userId string, secretKey []byte, accessExpire, refreshExpire time.Duration) (*TokenPair, error) {
	now := time.Now()
	sessionId := uuid.NewString()

	aClaims := &AuthClaims{
		UserId:    userId,
		TokenType: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionId,
			Issuer:    issuer,
			Subject:   userId,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessExpire)),
		},
	}
	aToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, aClaims).SignedString(secretKey)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	rClaims := &AuthClaims{
		UserId:    userId,
		TokenType: typeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionId,
			Issuer:    issuer,
			Subject:   userId,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshExpire)),
		},
	}
	rToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, rClaims).SignedString(secretKey)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{AccessToken: aToken, RefreshToken: rToken, SessionId: sessionId}, nil
}

// ParseToken validates an access token.
func ParseToken(aToken, secretKey string) (*AuthClaims, error) {
	return parse(aToken, secretKey, typeAccess)
}

// ParseRefreshToken validates a refresh token.
func ParseRefreshToken(rToken, secretKey string) (*AuthClaims, error) {
	return parse(rToken, secretKey, typeRefresh)
}

func parse(raw, secretKey, tokenType string) (*AuthClaims, error) {
	claims := new(AuthClaims)
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, jwt.ErrTokenExpired
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

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

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/http/jwt"
	"github.com/go-arcade/taskflow/pkg/log"
	"golang.org/x/crypto/bcrypt"
)

// SessionStore keeps the live session id of each user.
type SessionStore interface {
	Save(ctx context.Context, userId, sessionId string, ttl time.Duration) error
	Session(ctx context.Context, userId string) (string, error)
	Delete(ctx context.Context, userId string) error
}

type AuthService struct {
	users    repo.IUserRepository
	sessions SessionStore
	identity *IdentityService
	auth     http.Auth
}

func NewAuthService(users repo.IUserRepository, sessions SessionStore, identity *IdentityService, auth http.Auth) *AuthService {
	return &AuthService{users: users, sessions: sessions, identity: identity, auth: auth}
}

func (s *AuthService) accessExpire() time.Duration {
	if s.auth.AccessExpire <= 0 {
		return 2 * time.Hour
	}
	return s.auth.AccessExpire * time.Minute
}

func (s *AuthService) refreshExpire() time.Duration {
	if s.auth.RefreshExpire <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.auth.RefreshExpire * time.Minute
}

// Login checks the credentials and opens a new session, replacing any previous one.
func (s *AuthService) Login(ctx context.Context, req *model.LoginReq) (*model.LoginResp, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		log.Errorw("get user by email failed", "email", email, "error", err)
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if !u.Active {
		return nil, apperrors.Unauthorized("user is inactive")
	}

	resp, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	log.Infow("user logged in", "userId", u.ID.Hex(), "role", u.Role)
	return resp, nil
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (*model.LoginResp, error) {
	pair, err := jwt.GenToken(u.ID.Hex(), []byte(s.auth.SecretKey), s.accessExpire(), s.refreshExpire())
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, u.ID.Hex(), pair.SessionId, s.refreshExpire()); err != nil {
		log.Errorw("save session failed", "userId", u.ID.Hex(), "error", err)
		return nil, err
	}
	return &model.LoginResp{
		User:         u,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpireAt:     time.Now().Add(s.accessExpire()).Unix(),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, u *model.User) error {
	if err := s.sessions.Delete(ctx, u.ID.Hex()); err != nil {
		log.Errorw("delete session failed", "userId", u.ID.Hex(), "error", err)
		return err
	}
	s.identity.Invalidate(u.ID)
	return nil
}

// Refresh exchanges a refresh token for a new token pair while the session is live.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.LoginResp, error) {
	if refreshToken == "" {
		return nil, apperrors.Validation("refresh token is required")
	}
	claims, err := jwt.ParseRefreshToken(refreshToken, s.auth.SecretKey)
	if err != nil {
		if errors.Is(err, jwt.ErrWrongTokenType) {
			return nil, apperrors.Unauthorized("not a refresh token")
		}
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}
	sessionId, err := s.sessions.Session(ctx, claims.UserId)
	if err != nil {
		return nil, err
	}
	if sessionId == "" || sessionId != claims.ID {
		return nil, apperrors.Unauthorized("session has ended")
	}

	u, err := s.identity.Resolve(ctx, claims.UserId)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

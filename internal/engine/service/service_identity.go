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
	"time"

	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/cache"
	"github.com/go-arcade/taskflow/pkg/http/jwt"
	"github.com/go-arcade/taskflow/pkg/http/middleware"
	"github.com/go-arcade/taskflow/pkg/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

const identityTTL = 30 * time.Second

// IdentityService resolves an authenticated user id into the current user record,
// including company and team memberships. Lookups are cached briefly in process
// and concurrent misses for one user share a single query.
type IdentityService struct {
	users repo.IUserRepository
	cache *cache.LocalCache
	group singleflight.Group
	ttl   time.Duration
}

func NewIdentityService(users repo.IUserRepository, local *cache.LocalCache) *IdentityService {
	return &IdentityService{users: users, cache: local, ttl: identityTTL}
}

func identityKey(userId string) string {
	return "identity:" + userId
}

// Resolve returns the active user behind userId or an unauthorized error.
func (s *IdentityService) Resolve(ctx context.Context, userId string) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(identityKey(userId), &cached) {
		return &cached, nil
	}

	v, err, _ := s.group.Do(userId, func() (any, error) {
		oid, err := primitive.ObjectIDFromHex(userId)
		if err != nil {
			return nil, apperrors.Unauthorized("invalid user in token")
		}
		u, err := s.users.Get(ctx, oid)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.Unauthorized("user no longer exists")
			}
			return nil, err
		}
		if !u.Active {
			return nil, apperrors.Unauthorized("user is inactive")
		}
		if err := s.cache.SetJSON(identityKey(userId), u, s.ttl); err != nil {
			log.Warnw("cache identity failed", "userId", userId, "error", err)
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	u := *v.(*model.User)
	return &u, nil
}

// Invalidate drops the cached identity after the user record changed.
func (s *IdentityService) Invalidate(userId primitive.ObjectID) {
	s.cache.Del(identityKey(userId.Hex()))
}

// Resolver adapts Resolve to the authorization middleware.
func (s *IdentityService) Resolver() middleware.Resolver {
	return func(ctx context.Context, claims *jwt.AuthClaims) (any, error) {
		return s.Resolve(ctx, claims.UserId)
	}
}

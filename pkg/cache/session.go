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

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps one live session id per user in redis. A new login replaces
// the previous session; logout removes it.
type SessionStore struct {
	client redis.Cmdable
	prefix string
}

func NewSessionStore(client redis.Cmdable, prefix string) *SessionStore {
	if prefix == "" {
		prefix = "taskflow:session:"
	}
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) key(userId string) string {
	return s.prefix + userId
}

func (s *SessionStore) Save(ctx context.Context, userId, sessionId string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(userId), sessionId, ttl).Err()
}

// Session returns "" when the user has no live session.
func (s *SessionStore) Session(ctx context.Context, userId string) (string, error) {
	sessionId, err := s.client.Get(ctx, s.key(userId)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return sessionId, err
}

func (s *SessionStore) Delete(ctx context.Context, userId string) error {
	return s.client.Del(ctx, s.key(userId)).Err()
}

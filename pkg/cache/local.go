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
	"encoding/binary"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
)

const defaultLocalMaxBytes = 32 * 1024 * 1024

// LocalCache is an in-process cache on top of fastcache. Entries carry their own
// expiry in an 8-byte prefix; fastcache itself evicts by size only.
type LocalCache struct {
	cache *fastcache.Cache
	now   func() time.Time
}

func NewLocalCache(maxBytes int) *LocalCache {
	if maxBytes <= 0 {
		maxBytes = defaultLocalMaxBytes
	}
	return &LocalCache{cache: fastcache.New(maxBytes), now: time.Now}
}

func (l *LocalCache) Set(key string, value []byte, ttl time.Duration) {
	buf := make([]byte, 8+len(value))
	var expireAt int64
	if ttl > 0 {
		expireAt = l.now().Add(ttl).UnixNano()
	}
	binary.BigEndian.PutUint64(buf, uint64(expireAt))
	copy(buf[8:], value)
	l.cache.Set([]byte(key), buf)
}

func (l *LocalCache) Get(key string) ([]byte, bool) {
	buf, ok := l.cache.HasGet(nil, []byte(key))
	if !ok || len(buf) < 8 {
		return nil, false
	}
	expireAt := int64(binary.BigEndian.Uint64(buf))
	if expireAt != 0 && l.now().UnixNano() > expireAt {
		l.cache.Del([]byte(key))
		return nil, false
	}
	return buf[8:], true
}

func (l *LocalCache) Del(keys ...string) {
	for _, k := range keys {
		l.cache.Del([]byte(k))
	}
}

func (l *LocalCache) Reset() {
	l.cache.Reset()
}

// SetJSON stores v encoded with sonic.
func (l *LocalCache) SetJSON(key string, v any, ttl time.Duration) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	l.Set(key, data, ttl)
	return nil
}

// GetJSON decodes the entry into v; it reports false on miss or decode failure.
func (l *LocalCache) GetJSON(key string, v any) bool {
	data, ok := l.Get(key)
	if !ok {
		return false
	}
	return sonic.Unmarshal(data, v) == nil
}

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

package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[Log]
Level = "DEBUG"

[Http]
Port = 9090
ContextPath = "/v1"

[Http.Auth]
SecretKey = "secret"
AccessExpire = 15
RefreshExpire = 60

[Mongo]
Uri = "mongodb://mongo:27017"
DB = "tf"

[Storage]
Provider = "minio"
Bucket = "chat"

[Realtime]
Relay = true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	cfg, err := LoadConfigFile(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Http.Port)
	assert.Equal(t, "/v1", cfg.Http.ContextPath)
	assert.Equal(t, "secret", cfg.Http.Auth.SecretKey)
	assert.Equal(t, time.Duration(15), cfg.Http.Auth.AccessExpire)
	assert.Equal(t, "tf", cfg.Mongo.DB)
	assert.Equal(t, "minio", cfg.Storage.Provider)
	assert.Equal(t, "chat", cfg.Storage.Bucket)
	assert.True(t, cfg.Realtime.Relay)

	// defaults fill what the file leaves out
	assert.Equal(t, "0.0.0.0", cfg.Http.Host)
	assert.Equal(t, "taskflow:realtime", cfg.Realtime.RelayChannel)
	assert.Equal(t, 64, cfg.Realtime.SendBuffer)
	assert.Equal(t, "taskflow:session:", cfg.Http.Auth.RedisKeyPrefix)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("TASKFLOW_HTTP_PORT", "7000")
	t.Setenv("TASKFLOW_MONGO_URI", "mongodb://override:27017")

	cfg, err := LoadConfigFile(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Http.Port)
	assert.Equal(t, "mongodb://override:27017", cfg.Mongo.Uri)
}

func TestValidate(t *testing.T) {
	_, err := LoadConfigFile(writeConfig(t, "[Http]\nPort = 8080\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secretKey")

	_, err = LoadConfigFile(writeConfig(t, "[Http]\nPort = 8080\n[Http.Auth]\nSecretKey = \"s\"\nAccessExpire = 60\nRefreshExpire = 30\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh must outlive access")
}

func TestMissingFile(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

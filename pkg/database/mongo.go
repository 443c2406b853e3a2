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

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arcade/taskflow/pkg/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Uri            string
	DB             string
	Compressors    []string
	PoolSize       uint64
	ConnectTimeout time.Duration // seconds
}

// MongoClient bundles the client and the application database.
type MongoClient struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewMongoDB(ctx context.Context, cfg MongoDB) (*MongoClient, error) {
	timeout := cfg.ConnectTimeout * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOption := options.Client().ApplyURI(cfg.Uri)
	if len(cfg.Compressors) > 0 {
		clientOption.SetCompressors(cfg.Compressors)
	}
	if cfg.PoolSize > 0 {
		clientOption.SetMaxPoolSize(cfg.PoolSize)
	}
	client, err := mongo.Connect(ctx, clientOption)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	log.Infow("mongo connected", "db", cfg.DB)
	return &MongoClient{
		Client: client,
		DB:     client.Database(cfg.DB),
	}, nil
}

func (mc *MongoClient) GetCollection(name string) *mongo.Collection {
	return mc.DB.Collection(name)
}

func (mc *MongoClient) Close(ctx context.Context) error {
	return mc.Client.Disconnect(ctx)
}

// EnsureIndexes creates the given indexes on coll; existing identical indexes are a no-op.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	names, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
	}
	log.Debugw("indexes ensured", "collection", coll.Name(), "indexes", names)
	return nil
}

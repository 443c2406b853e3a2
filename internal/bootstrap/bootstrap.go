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

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/taskflow/internal/app"
	"github.com/go-arcade/taskflow/internal/engine/conf"
	"github.com/go-arcade/taskflow/pkg/cache"
	"github.com/go-arcade/taskflow/pkg/database"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/go-arcade/taskflow/pkg/retry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitAppFunc is the wire injector that assembles the application from its
// connected infrastructure.
type InitAppFunc func(appConf *conf.AppConfig, logger *zap.Logger, mongoClient *database.MongoClient, redisClient *redis.Client) (*app.App, func(), error)

// Bootstrap loads the configuration, connects mongo and redis and builds the app.
// The returned cleanup releases everything in reverse order.
func Bootstrap(configFile string, initApp InitAppFunc) (*app.App, func(), error) {
	appConf, err := conf.NewConf(configFile)
	if err != nil {
		return nil, nil, err
	}

	logger, err := log.NewLog(&appConf.Log)
	if err != nil {
		return nil, nil, err
	}
	log.Infow("configuration loaded", "file", configFile)

	var redisClient *redis.Client
	err = connect("redis", func(context.Context) error {
		var err error
		redisClient, err = cache.NewRedis(appConf.Redis)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	var mongoClient *database.MongoClient
	err = connect("mongo", func(ctx context.Context) error {
		var err error
		mongoClient, err = database.NewMongoDB(ctx, appConf.Mongo)
		return err
	})
	if err != nil {
		_ = redisClient.Close()
		return nil, nil, err
	}

	application, appCleanup, err := initApp(appConf, logger, mongoClient, redisClient)
	if err != nil {
		_ = mongoClient.Close(context.Background())
		_ = redisClient.Close()
		return nil, nil, err
	}

	cleanup := func() {
		appCleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Close(ctx); err != nil {
			logger.Error("Failed to disconnect mongo", zap.Error(err))
		}
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close redis", zap.Error(err))
		}
		_ = log.Sync()
	}
	return application, cleanup, nil
}

// connect retries a dependency that may still be starting next to the service.
func connect(name string, fn func(context.Context) error) error {
	return retry.Do(context.Background(), fn,
		retry.WithAttempts(5),
		retry.WithBackoff(retry.Exponential(time.Second, 10*time.Second)),
		retry.WithJitter(0.2),
		retry.OnRetry(func(attempt int, err error, wait time.Duration) {
			log.Warnw("dependency not ready, retrying", "dependency", name, "attempt", attempt, "wait", wait, "error", err)
		}),
	)
}

// Run starts the HTTP listener and blocks until a termination signal, then shuts
// down gracefully.
func Run(application *app.App, cleanup func()) {
	logger := application.Logger
	httpConf := application.AppConf.Http

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		addr := httpConf.Addr()
		logger.Sugar().Infow("HTTP listener started", "address", addr, "tls", httpConf.TLS.CertFile != "")
		var err error
		if httpConf.TLS.CertFile != "" && httpConf.TLS.KeyFile != "" {
			err = application.HttpApp.ListenTLS(addr, httpConf.TLS.CertFile, httpConf.TLS.KeyFile)
		} else {
			err = application.HttpApp.Listen(addr)
		}
		if err != nil {
			logger.Sugar().Errorw("HTTP listener failed", "address", addr, "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	sig := <-quit
	logger.Sugar().Infof("Received signal: %v, shutting down gracefully...", sig)

	timeout := time.Duration(httpConf.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()
	if err := application.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Sugar().Errorf("HTTP server shutdown error: %v", err)
	} else {
		logger.Info("HTTP server shut down gracefully")
	}

	cleanup()

	logger.Info("Server shutdown complete")
}

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

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-arcade/taskflow/internal/engine/conf"
	"github.com/go-arcade/taskflow/internal/engine/model"
	"github.com/go-arcade/taskflow/internal/engine/repo"
	"github.com/go-arcade/taskflow/internal/engine/service"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/database"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/go-arcade/taskflow/pkg/version"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "taskflow-cli",
	Short:         "taskflow-cli manages a taskflow deployment",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the top-level administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		return withRepositories(cmd.Context(), func(ctx context.Context, repos *repo.Repositories) error {
			u, err := seedAdmin(ctx, repos.User, name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "administrator %s created with id %s\n", u.Email, u.ID.Hex())
			return nil
		})
	},
}

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the mongo indexes the service relies on",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepositories(cmd.Context(), func(ctx context.Context, repos *repo.Repositories) error {
			if err := repos.EnsureIndexes(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "indexes ensured")
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "conf", "c", "conf.d/config.toml", "conf file path")

	seedAdminCmd.Flags().String("name", "Administrator", "display name")
	seedAdminCmd.Flags().String("email", "", "login email")
	seedAdminCmd.Flags().String("password", "", "login password")
	_ = seedAdminCmd.MarkFlagRequired("email")
	_ = seedAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(version.VersionCmd, seedAdminCmd, ensureIndexesCmd)
}

// withRepositories connects to mongo with the configured settings for the duration of fn.
func withRepositories(ctx context.Context, fn func(context.Context, *repo.Repositories) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	appConf, err := conf.LoadConfigFile(configFile)
	if err != nil {
		return err
	}
	if err := log.Init(&appConf.Log); err != nil {
		return err
	}

	mc, err := database.NewMongoDB(ctx, appConf.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mc.Close(closeCtx)
	}()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return fn(ctx, repo.NewRepositories(mc.DB))
}

func seedAdmin(ctx context.Context, users repo.IUserRepository, name, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Administrator"
	}
	hash, err := service.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     model.RoleSuperAdmin,
		Active:   true,
	}
	if err := users.Create(ctx, u); err != nil {
		if apperrors.IsConflict(err) {
			return nil, fmt.Errorf("an account with email %s already exists", email)
		}
		return nil, err
	}
	log.Infow("administrator seeded", "userId", u.ID.Hex(), "email", email)
	return u, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}

// Copyright 2025 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"fmt"

	"github.com/abcxyz/pkg/serving"

	"github.com/abcxyz/gitlab-access-broker/pkg/server/source"
)

// Run builds the GitLab system from the config and serves the broker routes
// until the context is cancelled.
func Run(ctx context.Context, cfg *Config) error {
	system, err := source.NewGitLabSystem(&source.Config{
		BaseURL:       cfg.GitLabBaseURL,
		Token:         cfg.GitLabToken,
		SkipTLSVerify: cfg.SkipTLSVerify,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize gitlab system: %w", err)
	}

	brokerServer, err := NewRouter(ctx, system)
	if err != nil {
		return fmt.Errorf("failed to create access broker server: %w", err)
	}

	// Create the server and listen.
	server, err := serving.New(cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to create serving infrastructure: %w", err)
	}
	if err := server.StartHTTPHandler(ctx, brokerServer.Routes(ctx)); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

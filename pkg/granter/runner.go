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

// The granter package contains a CLI command runner that grants or changes a
// user's role on a GitLab project or group.
package granter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/abcxyz/pkg/logging"

	"github.com/abcxyz/gitlab-access-broker/pkg/server"
	"github.com/abcxyz/gitlab-access-broker/pkg/server/source"
)

// Run is the main entry point for the grant-role command. It runs the same
// reconciliation the server performs and prints the result as JSON.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	logger := logging.FromContext(ctx)

	system, err := source.NewGitLabSystem(&source.Config{
		BaseURL:       cfg.GitLabBaseURL,
		Token:         cfg.GitLabToken,
		SkipTLSVerify: cfg.SkipTLSVerify,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize gitlab system: %w", err)
	}

	result, err := server.GrantRole(ctx, system, &server.GrantRequest{
		Username: cfg.Username,
		Target:   cfg.TargetPath,
		Role:     cfg.Role,
	})
	if err != nil {
		return err //nolint:wrapcheck // operation errors are already user-facing
	}

	logger.DebugContext(ctx, "role grant completed",
		"action", result.Action,
		"target_kind", result.TargetKind,
		"target_id", result.TargetID,
	)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

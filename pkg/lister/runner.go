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

// The lister package contains a CLI command runner that lists the merge
// requests or issues created within a calendar year.
package lister

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/abcxyz/pkg/logging"

	"github.com/abcxyz/gitlab-access-broker/pkg/server"
	"github.com/abcxyz/gitlab-access-broker/pkg/server/source"
)

// Run is the main entry point for the list command. It collects every page
// of the selected collection and prints the items as a JSON array.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	logger := logging.FromContext(ctx)

	collection, err := server.ParseCollection(cfg.Kind)
	if err != nil {
		return err //nolint:wrapcheck // operation errors are already user-facing
	}

	system, err := source.NewGitLabSystem(&source.Config{
		BaseURL:       cfg.GitLabBaseURL,
		Token:         cfg.GitLabToken,
		SkipTLSVerify: cfg.SkipTLSVerify,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize gitlab system: %w", err)
	}

	items, err := server.ListCreatedInYear(ctx, system, collection, cfg.Year)
	if err != nil {
		return err //nolint:wrapcheck // operation errors are already user-facing
	}

	logger.DebugContext(ctx, "listing completed",
		"kind", cfg.Kind,
		"year", cfg.Year,
		"items", len(items),
	)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

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

package lister

import (
	"fmt"

	"github.com/abcxyz/pkg/cli"
)

// Config defines the settings required for running the list command. Kind
// and Year come from the positional arguments.
type Config struct {
	GitLabBaseURL string
	GitLabToken   string
	SkipTLSVerify bool

	Kind string
	Year int
}

// Validate validates the config after load.
func (cfg *Config) Validate() error {
	if cfg.GitLabBaseURL == "" {
		return fmt.Errorf("GITLAB_BASE_URL is required")
	}
	if cfg.Kind == "" {
		return fmt.Errorf("a collection kind is required")
	}
	return nil
}

// ToFlags binds the config to the [cli.FlagSet] and returns it.
func (cfg *Config) ToFlags(set *cli.FlagSet) *cli.FlagSet {
	f := set.NewSection("GITLAB OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:   "gitlab-base-url",
		Target: &cfg.GitLabBaseURL,
		EnvVar: "GITLAB_BASE_URL",
		Usage:  `The base URL for the GitLab installation. It should include the protocol (https://) and no trailing slashes.`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "gitlab-token",
		Target: &cfg.GitLabToken,
		EnvVar: "GITLAB_TOKEN",
		Usage:  `The private token used to authenticate against the GitLab API.`,
	})

	f.BoolVar(&cli.BoolVar{
		Name:   "gitlab-skip-tls-verify",
		Target: &cfg.SkipTLSVerify,
		EnvVar: "GITLAB_SKIP_TLS_VERIFY",
		Usage:  `Disable TLS certificate verification for the GitLab API. Only for instances with self-signed certificates.`,
	})

	return set
}

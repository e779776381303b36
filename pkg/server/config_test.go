// Copyright 2025 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package server

import (
	"testing"

	"github.com/abcxyz/pkg/testutil"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		cfg    *Config
		expErr string
	}{
		{
			name: "valid",
			cfg: &Config{
				GitLabBaseURL: "https://gitlab.example.com",
				GitLabToken:   "glpat-test",
			},
		},
		{
			name: "valid_without_token",
			cfg: &Config{
				GitLabBaseURL: "https://gitlab.example.com",
			},
		},
		{
			name:   "missing_base_url",
			cfg:    &Config{GitLabToken: "glpat-test"},
			expErr: "GITLAB_BASE_URL is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.cfg.Validate()
			if diff := testutil.DiffErrString(err, tc.expErr); diff != "" {
				t.Error(diff)
			}
		})
	}
}

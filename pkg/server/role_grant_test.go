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
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abcxyz/gitlab-access-broker/pkg/server/source"
	"github.com/abcxyz/pkg/testutil"
)

func TestGrantRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		setup         func(f *fakeSystem)
		req           *GrantRequest
		want          *GrantResult
		wantErrCode   string
		wantHTTPCode  int
		expErr        string
		wantMutations int
	}{
		{
			name: "adds_new_member",
			setup: func(f *fakeSystem) {
				f.users["dev"] = 3
				f.targets["chat/api"] = source.Target{Kind: source.TargetKindProject, ID: 7}
			},
			req: &GrantRequest{Username: "dev", Target: "chat/api", Role: "developer"},
			want: &GrantResult{
				Action:      ActionAdded,
				TargetKind:  "project",
				TargetID:    7,
				UserID:      3,
				AccessLevel: 30,
			},
			wantMutations: 1,
		},
		{
			name: "adds_with_numeric_role_on_group",
			setup: func(f *fakeSystem) {
				f.users["dev"] = 3
				f.targets["platform"] = source.Target{Kind: source.TargetKindGroup, ID: 12}
			},
			req: &GrantRequest{Username: "dev", Target: "platform", Role: "40"},
			want: &GrantResult{
				Action:      ActionAdded,
				TargetKind:  "group",
				TargetID:    12,
				UserID:      3,
				AccessLevel: 40,
			},
			wantMutations: 1,
		},
		{
			name: "updates_existing_member",
			setup: func(f *fakeSystem) {
				f.users["dev"] = 3
				f.targets["chat/api"] = source.Target{Kind: source.TargetKindProject, ID: 7}
				f.members["project/7/3"] = 20
			},
			req: &GrantRequest{Username: "dev", Target: "chat/api", Role: "developer"},
			want: &GrantResult{
				Action:      ActionUpdated,
				TargetKind:  "project",
				TargetID:    7,
				UserID:      3,
				AccessLevel: 30,
			},
			wantMutations: 1,
		},
		{
			name: "noop_when_level_matches",
			setup: func(f *fakeSystem) {
				f.users["dev"] = 3
				f.targets["chat/api"] = source.Target{Kind: source.TargetKindProject, ID: 7}
				f.members["project/7/3"] = 30
			},
			req: &GrantRequest{Username: "dev", Target: "chat/api", Role: "developer"},
			want: &GrantResult{
				Action:     ActionNoop,
				Message:    "user already has access_level=30",
				TargetKind: "project",
				TargetID:   7,
				UserID:     3,
			},
			wantMutations: 0,
		},
		{
			name: "unauthorized_without_credential",
			setup: func(f *fakeSystem) {
				f.authenticated = false
				f.users["dev"] = 3
			},
			req:          &GrantRequest{Username: "dev", Target: "chat/api", Role: "developer"},
			wantErrCode:  ErrCodeUnauthorized,
			wantHTTPCode: http.StatusUnauthorized,
			expErr:       "no credential is configured",
		},
		{
			name:         "missing_fields",
			setup:        func(f *fakeSystem) {},
			req:          &GrantRequest{Username: "dev"},
			wantErrCode:  ErrCodeInvalidArgument,
			wantHTTPCode: http.StatusBadRequest,
			expErr:       "username, target and role are all required",
		},
		{
			name: "unknown_user",
			setup: func(f *fakeSystem) {
				f.targets["chat/api"] = source.Target{Kind: source.TargetKindProject, ID: 7}
			},
			req:          &GrantRequest{Username: "ghost", Target: "chat/api", Role: "developer"},
			wantErrCode:  ErrCodeNotFound,
			wantHTTPCode: http.StatusNotFound,
			expErr:       `user "ghost": not found`,
		},
		{
			name: "unknown_target",
			setup: func(f *fakeSystem) {
				f.users["dev"] = 3
			},
			req:          &GrantRequest{Username: "dev", Target: "no/such", Role: "developer"},
			wantErrCode:  ErrCodeNotFound,
			wantHTTPCode: http.StatusNotFound,
			expErr:       `target "no/such" is neither a project nor a group`,
		},
		{
			name: "invalid_role",
			setup: func(f *fakeSystem) {
				f.users["dev"] = 3
				f.targets["chat/api"] = source.Target{Kind: source.TargetKindProject, ID: 7}
			},
			req:          &GrantRequest{Username: "dev", Target: "chat/api", Role: "bogus"},
			wantErrCode:  ErrCodeInvalidArgument,
			wantHTTPCode: http.StatusBadRequest,
			expErr:       `invalid role "bogus"`,
		},
		{
			name: "unknown_numeric_level",
			setup: func(f *fakeSystem) {
				f.users["dev"] = 3
				f.targets["chat/api"] = source.Target{Kind: source.TargetKindProject, ID: 7}
			},
			req:          &GrantRequest{Username: "dev", Target: "chat/api", Role: "15"},
			wantErrCode:  ErrCodeInvalidArgument,
			wantHTTPCode: http.StatusBadRequest,
			expErr:       `invalid role "15"`,
		},
		{
			name: "upstream_failure_passes_through",
			setup: func(f *fakeSystem) {
				f.err = &source.UpstreamError{StatusCode: http.StatusServiceUnavailable, Body: "maintenance"}
			},
			req:          &GrantRequest{Username: "dev", Target: "chat/api", Role: "developer"},
			wantErrCode:  ErrCodeUpstream,
			wantHTTPCode: http.StatusServiceUnavailable,
			expErr:       "maintenance",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFakeSystem()
			tc.setup(f)

			got, err := GrantRole(t.Context(), f, tc.req)
			if diff := testutil.DiffErrString(err, tc.expErr); diff != "" {
				t.Error(diff)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("result mismatch (-want, +got):\n%s", diff)
			}

			if err != nil {
				var apiErr *apiError
				if !errors.As(err, &apiErr) {
					t.Fatalf("error %v is not an apiError", err)
				}
				if got, want := apiErr.ErrCode, tc.wantErrCode; got != want {
					t.Errorf("error code: got %q, want %q", got, want)
				}
				if got, want := apiErr.Code, tc.wantHTTPCode; got != want {
					t.Errorf("http code: got %d, want %d", got, want)
				}
			}

			if got, want := f.addCalls+f.updateCalls, tc.wantMutations; got != want {
				t.Errorf("mutating calls: got %d, want %d", got, want)
			}
		})
	}
}

// A repeated identical grant must never mutate a second time.
func TestGrantRole_Idempotence(t *testing.T) {
	t.Parallel()

	f := newFakeSystem()
	f.users["dev"] = 3
	f.targets["chat/api"] = source.Target{Kind: source.TargetKindProject, ID: 7}

	req := &GrantRequest{Username: "dev", Target: "chat/api", Role: "developer"}

	first, err := GrantRole(t.Context(), f, req)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := first.Action, ActionAdded; got != want {
		t.Errorf("first action: got %q, want %q", got, want)
	}

	second, err := GrantRole(t.Context(), f, req)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := second.Action, ActionNoop; got != want {
		t.Errorf("second action: got %q, want %q", got, want)
	}

	if got, want := f.addCalls, 1; got != want {
		t.Errorf("add calls: got %d, want %d", got, want)
	}
	if got, want := f.updateCalls, 0; got != want {
		t.Errorf("update calls: got %d, want %d", got, want)
	}
}

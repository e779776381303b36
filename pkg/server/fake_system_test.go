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
	"context"
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/abcxyz/gitlab-access-broker/pkg/server/source"
)

// fakeSystem is an in-memory source.System. Mutating calls are counted and
// applied to its own state so repeated grants observe their own effects.
type fakeSystem struct {
	authenticated bool
	users         map[string]int
	targets       map[string]source.Target
	members       map[string]gitlab.AccessLevelValue
	pages         []*source.Page
	err           error // when set, returned by every remote call

	addCalls      int
	updateCalls   int
	listCalls     []int
	createdAfter  string
	createdBefore string
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		authenticated: true,
		users:         map[string]int{},
		targets:       map[string]source.Target{},
		members:       map[string]gitlab.AccessLevelValue{},
	}
}

func memberKey(t source.Target, userID int) string {
	return fmt.Sprintf("%s/%d/%d", t.Kind, t.ID, userID)
}

func (f *fakeSystem) Authenticated() bool { return f.authenticated }

func (f *fakeSystem) LookupUser(ctx context.Context, username string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	id, ok := f.users[username]
	if !ok {
		return 0, fmt.Errorf("user %q: %w", username, source.ErrNotFound)
	}
	return id, nil
}

func (f *fakeSystem) ResolveTarget(ctx context.Context, path string) (source.Target, error) {
	if f.err != nil {
		return source.Target{}, f.err
	}
	t, ok := f.targets[path]
	if !ok {
		return source.Target{}, fmt.Errorf("target %q is neither a project nor a group: %w", path, source.ErrNotFound)
	}
	return t, nil
}

func (f *fakeSystem) Member(ctx context.Context, t source.Target, userID int) (*source.Membership, error) {
	if f.err != nil {
		return nil, f.err
	}
	level, ok := f.members[memberKey(t, userID)]
	if !ok {
		return nil, nil
	}
	return &source.Membership{UserID: userID, AccessLevel: level}, nil
}

func (f *fakeSystem) AddMember(ctx context.Context, t source.Target, userID int, level gitlab.AccessLevelValue) error {
	if f.err != nil {
		return f.err
	}
	f.addCalls++
	f.members[memberKey(t, userID)] = level
	return nil
}

func (f *fakeSystem) UpdateMember(ctx context.Context, t source.Target, userID int, level gitlab.AccessLevelValue) error {
	if f.err != nil {
		return f.err
	}
	f.updateCalls++
	f.members[memberKey(t, userID)] = level
	return nil
}

func (f *fakeSystem) ListCreatedPage(ctx context.Context, c source.Collection, createdAfter, createdBefore string, page int) (*source.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.listCalls = append(f.listCalls, page)
	f.createdAfter = createdAfter
	f.createdBefore = createdBefore
	if page < 1 || page > len(f.pages) {
		return &source.Page{}, nil
	}
	return f.pages[page-1], nil
}

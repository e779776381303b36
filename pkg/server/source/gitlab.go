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

package source

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/abcxyz/pkg/cache"
)

// Config holds the connection settings for a GitLab instance.
type Config struct {
	// BaseURL is the base URL for the GitLab installation. It should include
	// the protocol (https://) and no trailing slashes.
	BaseURL string

	// Token is the private token used to authenticate API calls. It may be
	// empty, in which case mutating operations are rejected up front.
	Token string

	// SkipTLSVerify disables certificate verification. Only intended for
	// instances with self-signed certificates.
	SkipTLSVerify bool
}

// targetCacheDuration bounds how long a resolved path keeps its (kind, id)
// pair. Paths can be transferred between namespaces, so they are not held
// forever.
const targetCacheDuration = 5 * time.Minute

// listPageSize is the page size requested from collection endpoints.
const listPageSize = 100

// gitLabSystem is a System implementation backed by a GitLab instance's v4
// REST API.
type gitLabSystem struct {
	client  *gitlab.Client
	token   string
	targets *cache.Cache[Target]
}

// NewGitLabSystem creates a representation of a GitLab instance. The
// returned System holds a single API client configured once from cfg and is
// read-only afterwards.
func NewGitLabSystem(cfg *Config) (System, error) {
	httpClient := &http.Client{}
	if cfg.SkipTLSVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // operator opt-in for self-signed instances
		}
	}

	client, err := gitlab.NewClient(cfg.Token,
		gitlab.WithBaseURL(cfg.BaseURL),
		gitlab.WithHTTPClient(httpClient),
		gitlab.WithoutRetries(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}

	return &gitLabSystem{
		client:  client,
		token:   cfg.Token,
		targets: cache.New[Target](targetCacheDuration),
	}, nil
}

// Authenticated implements System.
func (g *gitLabSystem) Authenticated() bool {
	return g.token != ""
}

// LookupUser implements System. GitLab's username filter matches
// prefixes, so the result list is narrowed to an exact match.
func (g *gitLabSystem) LookupUser(ctx context.Context, username string) (int, error) {
	users, resp, err := g.client.Users.ListUsers(&gitlab.ListUsersOptions{
		Username: gitlab.Ptr(username),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return 0, upstreamError(resp, err)
	}
	for _, u := range users {
		if u.Username == username {
			return u.ID, nil
		}
	}
	return 0, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

// ResolveTarget implements System. Resolutions are cached briefly since
// target ids are stable for a given path.
func (g *gitLabSystem) ResolveTarget(ctx context.Context, path string) (Target, error) {
	target, err := g.targets.WriteThruLookup(path, func() (Target, error) {
		return g.resolveTarget(ctx, path)
	})
	if err != nil {
		return Target{}, err
	}
	return target, nil
}

// resolveTarget looks the path up as a project first, then as a group.
// Project and group namespaces are disjoint on GitLab, so the first match
// wins.
func (g *gitLabSystem) resolveTarget(ctx context.Context, path string) (Target, error) {
	project, resp, err := g.client.Projects.GetProject(path, nil, gitlab.WithContext(ctx))
	if err == nil {
		return Target{Kind: TargetKindProject, ID: project.ID}, nil
	}
	if !isNotFound(resp) {
		return Target{}, upstreamError(resp, err)
	}

	group, resp, err := g.client.Groups.GetGroup(path, nil, gitlab.WithContext(ctx))
	if err == nil {
		return Target{Kind: TargetKindGroup, ID: group.ID}, nil
	}
	if !isNotFound(resp) {
		return Target{}, upstreamError(resp, err)
	}

	return Target{}, fmt.Errorf("target %q is neither a project nor a group: %w", path, ErrNotFound)
}

// Member implements System. A 404 from the members endpoint signals that the
// user is not a member, not a failure.
func (g *gitLabSystem) Member(ctx context.Context, t Target, userID int) (*Membership, error) {
	var (
		member *Membership
		resp   *gitlab.Response
		err    error
	)
	switch t.Kind {
	case TargetKindProject:
		var m *gitlab.ProjectMember
		m, resp, err = g.client.ProjectMembers.GetProjectMember(t.ID, userID, gitlab.WithContext(ctx))
		if err == nil {
			member = &Membership{UserID: m.ID, AccessLevel: m.AccessLevel}
		}
	case TargetKindGroup:
		var m *gitlab.GroupMember
		m, resp, err = g.client.GroupMembers.GetGroupMember(t.ID, userID, gitlab.WithContext(ctx))
		if err == nil {
			member = &Membership{UserID: m.ID, AccessLevel: m.AccessLevel}
		}
	default:
		return nil, fmt.Errorf("unknown target kind %q", t.Kind)
	}
	if err != nil {
		if isNotFound(resp) {
			return nil, nil
		}
		return nil, upstreamError(resp, err)
	}
	return member, nil
}

// AddMember implements System.
func (g *gitLabSystem) AddMember(ctx context.Context, t Target, userID int, level gitlab.AccessLevelValue) error {
	var (
		resp *gitlab.Response
		err  error
	)
	switch t.Kind {
	case TargetKindProject:
		_, resp, err = g.client.ProjectMembers.AddProjectMember(t.ID, &gitlab.AddProjectMemberOptions{
			UserID:      userID,
			AccessLevel: gitlab.Ptr(level),
		}, gitlab.WithContext(ctx))
	case TargetKindGroup:
		_, resp, err = g.client.GroupMembers.AddGroupMember(t.ID, &gitlab.AddGroupMemberOptions{
			UserID:      gitlab.Ptr(userID),
			AccessLevel: gitlab.Ptr(level),
		}, gitlab.WithContext(ctx))
	default:
		return fmt.Errorf("unknown target kind %q", t.Kind)
	}
	if err != nil {
		return upstreamError(resp, err)
	}
	return nil
}

// UpdateMember implements System.
func (g *gitLabSystem) UpdateMember(ctx context.Context, t Target, userID int, level gitlab.AccessLevelValue) error {
	var (
		resp *gitlab.Response
		err  error
	)
	switch t.Kind {
	case TargetKindProject:
		_, resp, err = g.client.ProjectMembers.EditProjectMember(t.ID, userID, &gitlab.EditProjectMemberOptions{
			AccessLevel: gitlab.Ptr(level),
		}, gitlab.WithContext(ctx))
	case TargetKindGroup:
		_, resp, err = g.client.GroupMembers.EditGroupMember(t.ID, userID, &gitlab.EditGroupMemberOptions{
			AccessLevel: gitlab.Ptr(level),
		}, gitlab.WithContext(ctx))
	default:
		return fmt.Errorf("unknown target kind %q", t.Kind)
	}
	if err != nil {
		return upstreamError(resp, err)
	}
	return nil
}

// ListCreatedPage implements System. Items are decoded as raw JSON so the
// upstream objects pass through unmodified, and the next page number comes
// from the X-Next-Page response header.
func (g *gitLabSystem) ListCreatedPage(ctx context.Context, c Collection, createdAfter, createdBefore string, page int) (*Page, error) {
	var endpoint string
	switch c {
	case CollectionMergeRequests:
		endpoint = "merge_requests"
	case CollectionIssues:
		endpoint = "issues"
	default:
		return nil, fmt.Errorf("unknown collection %q", c)
	}

	opt := struct {
		Scope         string `url:"scope"`
		CreatedAfter  string `url:"created_after"`
		CreatedBefore string `url:"created_before"`
		PerPage       int    `url:"per_page"`
		Page          int    `url:"page"`
	}{
		Scope:         "all",
		CreatedAfter:  createdAfter,
		CreatedBefore: createdBefore,
		PerPage:       listPageSize,
		Page:          page,
	}

	req, err := g.client.NewRequest(http.MethodGet, endpoint, opt, []gitlab.RequestOptionFunc{gitlab.WithContext(ctx)})
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}

	var items []json.RawMessage
	resp, err := g.client.Do(req, &items)
	if err != nil {
		return nil, upstreamError(resp, err)
	}
	return &Page{Items: items, NextPage: resp.NextPage}, nil
}

func isNotFound(resp *gitlab.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

// upstreamError converts a failed client call into an UpstreamError carrying
// the response status and body. A status of 0 means the call never produced
// a response.
func upstreamError(resp *gitlab.Response, err error) error {
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	var errResp *gitlab.ErrorResponse
	if errors.As(err, &errResp) {
		return &UpstreamError{StatusCode: status, Body: errResp.Message}
	}
	return &UpstreamError{StatusCode: status, Body: err.Error()}
}

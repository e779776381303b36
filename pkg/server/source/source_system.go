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

// Package source abstracts the remote project-hosting system that the broker
// operates on.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// TargetKind distinguishes the two membership-bearing namespaces of the
// remote system.
type TargetKind string

const (
	TargetKindProject TargetKind = "project"
	TargetKindGroup   TargetKind = "group"
)

// Target is a project or group resolved from a slash-delimited namespace
// path.
type Target struct {
	Kind TargetKind
	ID   int
}

// Membership is the (user id, access level) pair held by the remote system
// for a member of a target.
type Membership struct {
	UserID      int
	AccessLevel gitlab.AccessLevelValue
}

// Collection selects one of the creation-dated collections the remote system
// exposes.
type Collection string

const (
	CollectionMergeRequests Collection = "mr"
	CollectionIssues        Collection = "issues"
)

// Page is one page of a collection listing. Items are the upstream objects
// exactly as returned. NextPage is the continuation cursor, 0 when the
// listing is exhausted.
type Page struct {
	Items    []json.RawMessage
	NextPage int
}

// ErrNotFound marks a user or target that could not be resolved on the
// remote system. Callers match it with errors.Is.
var ErrNotFound = errors.New("not found")

// UpstreamError is a non-2xx response from the remote system that is not an
// expected absence. The status and body are carried through verbatim.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream call failed (%d): %s", e.StatusCode, e.Body)
}

// System is the set of remote operations the broker needs. Implementations
// must be safe for concurrent use.
type System interface {
	// Authenticated reports whether a credential is configured for the
	// remote system.
	Authenticated() bool

	// LookupUser resolves a username to its unique numeric id, requiring an
	// exact match. Returns an error wrapping ErrNotFound when there is none.
	LookupUser(ctx context.Context, username string) (int, error)

	// ResolveTarget resolves a namespace path to a project or a group,
	// trying projects first. Returns an error wrapping ErrNotFound when the
	// path matches neither.
	ResolveTarget(ctx context.Context, path string) (Target, error)

	// Member fetches the user's current membership on the target. A nil
	// Membership with a nil error means the user is not a member.
	Member(ctx context.Context, t Target, userID int) (*Membership, error)

	// AddMember creates a new membership at the given access level.
	AddMember(ctx context.Context, t Target, userID int, level gitlab.AccessLevelValue) error

	// UpdateMember changes an existing membership to the given access level.
	UpdateMember(ctx context.Context, t Target, userID int, level gitlab.AccessLevelValue) error

	// ListCreatedPage fetches one page of the collection restricted to items
	// created inside the [createdAfter, createdBefore] window. Timestamps
	// are RFC 3339 in UTC.
	ListCreatedPage(ctx context.Context, c Collection, createdAfter, createdBefore string, page int) (*Page, error)
}

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

	"github.com/abcxyz/gitlab-access-broker/pkg/roles"
	"github.com/abcxyz/gitlab-access-broker/pkg/server/source"
)

// Actions reported by a role grant.
const (
	ActionNoop    = "noop"
	ActionAdded   = "added"
	ActionUpdated = "updated"
)

// GrantRequest is the body of a role grant call.
type GrantRequest struct {
	Username string `json:"username"`
	Target   string `json:"target"`
	Role     string `json:"role"`
}

// GrantResult reports the reconciliation outcome of a role grant.
type GrantResult struct {
	Action      string `json:"action"`
	Message     string `json:"message,omitempty"`
	TargetKind  string `json:"target_kind"`
	TargetID    int    `json:"target_id"`
	UserID      int    `json:"user_id"`
	AccessLevel int    `json:"access_level,omitempty"`
}

// GrantRole grants or changes the user's membership role on the target
// project or group. It mutates only when the current membership differs from
// the request, so repeating an identical grant is a noop.
func GrantRole(ctx context.Context, sys source.System, req *GrantRequest) (*GrantResult, error) {
	if !sys.Authenticated() {
		return nil, errUnauthorized("no credential is configured for the remote system")
	}
	if req.Username == "" || req.Target == "" || req.Role == "" {
		return nil, errInvalidArgument("username, target and role are all required")
	}

	userID, err := sys.LookupUser(ctx, req.Username)
	if err != nil {
		return nil, asAPIError(err)
	}

	target, err := sys.ResolveTarget(ctx, req.Target)
	if err != nil {
		return nil, asAPIError(err)
	}

	level, err := roles.ParseLevel(req.Role)
	if err != nil {
		return nil, errInvalidArgument("%v", err)
	}

	member, err := sys.Member(ctx, target, userID)
	if err != nil {
		return nil, asAPIError(err)
	}

	// Already at the requested level, report without mutating.
	if member != nil && member.AccessLevel == level {
		return &GrantResult{
			Action:     ActionNoop,
			Message:    fmt.Sprintf("user already has access_level=%d", level),
			TargetKind: string(target.Kind),
			TargetID:   target.ID,
			UserID:     userID,
		}, nil
	}

	action := ActionAdded
	if member != nil {
		action = ActionUpdated
		err = sys.UpdateMember(ctx, target, userID, level)
	} else {
		err = sys.AddMember(ctx, target, userID, level)
	}
	if err != nil {
		return nil, asAPIError(err)
	}

	return &GrantResult{
		Action:      action,
		TargetKind:  string(target.Kind),
		TargetID:    target.ID,
		UserID:      userID,
		AccessLevel: int(level),
	}, nil
}

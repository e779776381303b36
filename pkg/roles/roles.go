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

// Package roles maps role names onto GitLab numeric access levels.
package roles

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// roleLevels holds the GitLab 15.x default roles. The planner and minimal
// access roles are intentionally not grantable here.
var roleLevels = map[string]gitlab.AccessLevelValue{
	"guest":      gitlab.GuestPermissions,
	"reporter":   gitlab.ReporterPermissions,
	"developer":  gitlab.DeveloperPermissions,
	"maintainer": gitlab.MaintainerPermissions,
	"owner":      gitlab.OwnerPermissions,
}

// Names returns the known role names in ascending level order.
func Names() []string {
	names := make([]string, 0, len(roleLevels))
	for name := range roleLevels {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Compare(roleLevels[a], roleLevels[b])
	})
	return names
}

// Levels returns the known access levels in ascending order.
func Levels() []int {
	levels := make([]int, 0, len(roleLevels))
	for _, level := range roleLevels {
		levels = append(levels, int(level))
	}
	slices.Sort(levels)
	return levels
}

// ParseLevel resolves a role given either as a numeric access level or as a
// case-insensitive role name. The resulting level must be one of the known
// levels.
func ParseLevel(role string) (gitlab.AccessLevelValue, error) {
	if n, err := strconv.Atoi(role); err == nil {
		level := gitlab.AccessLevelValue(n)
		if !knownLevel(level) {
			return 0, invalidRole(role)
		}
		return level, nil
	}

	level, ok := roleLevels[strings.ToLower(role)]
	if !ok {
		return 0, invalidRole(role)
	}
	return level, nil
}

func knownLevel(level gitlab.AccessLevelValue) bool {
	for _, known := range roleLevels {
		if level == known {
			return true
		}
	}
	return false
}

func invalidRole(role string) error {
	return fmt.Errorf("invalid role %q, allowed roles: %s or levels: %v",
		role, strings.Join(Names(), ", "), Levels())
}

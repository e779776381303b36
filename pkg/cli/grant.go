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

package cli

import (
	"context"
	"fmt"

	"github.com/abcxyz/pkg/cli"

	"github.com/abcxyz/gitlab-access-broker/pkg/granter"
)

var _ cli.Command = (*GrantRoleCommand)(nil)

type GrantRoleCommand struct {
	cli.BaseCommand
	cfg *granter.Config

	// testFlagSetOpts is only used for testing.
	testFlagSetOpts []cli.Option
}

func (c *GrantRoleCommand) Desc() string {
	return `Grant or change a user's role on a project or group`
}

func (c *GrantRoleCommand) Help() string {
	return `
Usage: {{ COMMAND }} [options] <username> <target_path> <role>

  Grant the user the given role on a GitLab project or group. The membership
  is added or updated only when the current access level differs; repeating
  an identical grant is a noop. The resulting action is printed as JSON.

  The role is either a role name (guest, reporter, developer, maintainer,
  owner) or a numeric access level (10-50).
`
}

func (c *GrantRoleCommand) Flags() *cli.FlagSet {
	c.cfg = &granter.Config{}
	set := cli.NewFlagSet(c.testFlagSetOpts...)
	return c.cfg.ToFlags(set)
}

func (c *GrantRoleCommand) Run(ctx context.Context, args []string) error {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	args = f.Args()
	if len(args) != 3 {
		return fmt.Errorf("expected <username> <target_path> <role>, got %q", args)
	}
	c.cfg.Username = args[0]
	c.cfg.TargetPath = args[1]
	c.cfg.Role = args[2]

	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return granter.Run(ctx, c.cfg, c.Stdout()) //nolint:wrapcheck // operation errors are already user-facing
}

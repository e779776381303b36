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
	"strconv"

	"github.com/abcxyz/pkg/cli"

	"github.com/abcxyz/gitlab-access-broker/pkg/lister"
)

var _ cli.Command = (*ListCommand)(nil)

type ListCommand struct {
	cli.BaseCommand
	cfg *lister.Config

	// testFlagSetOpts is only used for testing.
	testFlagSetOpts []cli.Option
}

func (c *ListCommand) Desc() string {
	return `List merge requests or issues created within a calendar year`
}

func (c *ListCommand) Help() string {
	return `
Usage: {{ COMMAND }} [options] <issues|mr> <year>

  List every merge request or issue created within the given calendar year
  (UTC), following the API's pagination until the listing is exhausted. The
  items are printed as a JSON array of the upstream objects.
`
}

func (c *ListCommand) Flags() *cli.FlagSet {
	c.cfg = &lister.Config{}
	set := cli.NewFlagSet(c.testFlagSetOpts...)
	return c.cfg.ToFlags(set)
}

func (c *ListCommand) Run(ctx context.Context, args []string) error {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	args = f.Args()
	if len(args) != 2 {
		return fmt.Errorf("expected <issues|mr> <year>, got %q", args)
	}
	c.cfg.Kind = args[0]

	year, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("year must be an integer, got %q", args[1])
	}
	c.cfg.Year = year

	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return lister.Run(ctx, c.cfg, c.Stdout()) //nolint:wrapcheck // operation errors are already user-facing
}

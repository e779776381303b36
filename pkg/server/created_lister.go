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
	"encoding/json"
	"fmt"

	"github.com/abcxyz/gitlab-access-broker/pkg/server/source"
)

// minYear and maxYear bound the accepted calendar years.
const (
	minYear = 1900
	maxYear = 2100
)

const firstPage = 1

// ParseCollection maps the exposed kind selector onto a collection.
func ParseCollection(kind string) (source.Collection, error) {
	switch source.Collection(kind) {
	case source.CollectionMergeRequests:
		return source.CollectionMergeRequests, nil
	case source.CollectionIssues:
		return source.CollectionIssues, nil
	default:
		return "", errInvalidArgument("kind must be %q or %q, got %q",
			source.CollectionMergeRequests, source.CollectionIssues, kind)
	}
}

// ListCreatedInYear returns every item of the collection created within the
// given calendar year (UTC), in upstream order, following the pagination
// cursor until it is exhausted. The year is validated before any remote call
// is made.
func ListCreatedInYear(ctx context.Context, sys source.System, c source.Collection, year int) ([]json.RawMessage, error) {
	if year < minYear || year > maxYear {
		return nil, errInvalidArgument("year must be a 4-digit integer within %d..%d, got %d", minYear, maxYear, year)
	}

	createdAfter := fmt.Sprintf("%04d-01-01T00:00:00Z", year)
	createdBefore := fmt.Sprintf("%04d-12-31T23:59:59Z", year)

	// Non-nil so an empty listing still encodes as a JSON array.
	out := []json.RawMessage{}
	page := firstPage
	for {
		batch, err := sys.ListCreatedPage(ctx, c, createdAfter, createdBefore, page)
		if err != nil {
			return nil, asAPIError(err)
		}
		if len(batch.Items) == 0 {
			break
		}
		out = append(out, batch.Items...)
		if batch.NextPage == 0 {
			break
		}
		page = batch.NextPage
	}
	return out, nil
}

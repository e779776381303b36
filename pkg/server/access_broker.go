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

// Package server defines the http request handlers and the route processing
// for this service. The server proxies administrative role grants and
// creation-dated listings onto a GitLab instance's REST API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/abcxyz/pkg/gcputil"
	"github.com/abcxyz/pkg/logging"

	"github.com/abcxyz/gitlab-access-broker/pkg/server/source"
	"github.com/abcxyz/gitlab-access-broker/pkg/version"
)

// AccessBrokerServer is the implementation of an HTTP server that brokers
// administrative operations onto a GitLab instance.
type AccessBrokerServer struct {
	system source.System
}

// NewRouter creates a new HTTP server implementation that brokers role
// grants and creation-dated listings onto the given remote system.
func NewRouter(ctx context.Context, system source.System) (*AccessBrokerServer, error) {
	return &AccessBrokerServer{
		system: system,
	}, nil
}

// handleGrant creates a http.HandlerFunc implementation that processes role
// grant requests.
func (s *AccessBrokerServer) handleGrant() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		defer r.Body.Close()

		var req GrantRequest
		dec := json.NewDecoder(io.LimitReader(r.Body, 1_048_576)) // 1 MiB
		if err := dec.Decode(&req); err != nil {
			writeError(ctx, w, &apiError{
				Code:     http.StatusBadRequest,
				ErrCode:  ErrCodeInvalidArgument,
				Message:  "error parsing request information - invalid JSON",
				Internal: fmt.Errorf("error parsing request: %w", err),
			})
			return
		}

		result, err := GrantRole(ctx, s.system, &req)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		logger.InfoContext(ctx, "granted role",
			"action", result.Action,
			"target_kind", result.TargetKind,
			"target_id", result.TargetID,
			"user_id", result.UserID,
		)
		writeResult(ctx, w, result)
	})
}

// handleCreated creates a http.HandlerFunc implementation that processes
// created-in-year listing requests.
func (s *AccessBrokerServer) handleCreated() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		collection, err := ParseCollection(r.PathValue("kind"))
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		year, err := strconv.Atoi(r.PathValue("year"))
		if err != nil {
			writeError(ctx, w, errInvalidArgument("year must be an integer, got %q", r.PathValue("year")))
			return
		}

		items, err := ListCreatedInYear(ctx, s.system, collection, year)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		writeResult(ctx, w, items)
	})
}

// handleVersion is a simple http.HandlerFunc that responds with version
// information for the server.
func (s *AccessBrokerServer) handleVersion() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "{\"version\":%q}\n", version.HumanVersion)
	})
}

// Routes creates a ServeMux of all of the routes that this Router supports.
func (s *AccessBrokerServer) Routes(ctx context.Context) http.Handler {
	logger := logging.FromContext(ctx)
	projectID := gcputil.ProjectID(ctx)

	middleware := logging.HTTPInterceptor(logger, projectID)

	mux := http.NewServeMux()
	mux.Handle("POST /roles/grant", middleware(s.handleGrant()))
	mux.Handle("GET /created/{kind}/{year}", middleware(s.handleCreated()))
	mux.Handle("GET /version", middleware(s.handleVersion()))
	return mux
}

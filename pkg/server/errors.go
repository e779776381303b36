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
	"errors"
	"fmt"
	"net/http"

	"github.com/abcxyz/pkg/logging"

	"github.com/abcxyz/gitlab-access-broker/pkg/server/source"
)

// Standard error codes for the API.
const (
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUpstream        = "UPSTREAM_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// apiError carries the HTTP status and stable error code for a failed
// operation alongside the message returned to the caller. Internal holds
// detail that is logged but never sent back.
type apiError struct {
	Code     int
	ErrCode  string
	Message  string
	Internal error
}

func (e *apiError) Error() string { return e.Message }
func (e *apiError) Unwrap() error { return e.Internal }

func errUnauthorized(msg string) *apiError {
	return &apiError{Code: http.StatusUnauthorized, ErrCode: ErrCodeUnauthorized, Message: msg}
}

func errInvalidArgument(format string, args ...any) *apiError {
	return &apiError{Code: http.StatusBadRequest, ErrCode: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// asAPIError normalizes any failure into an apiError, translating the source
// package's error types into the taxonomy. Upstream statuses pass through
// verbatim; a statusless upstream failure becomes a bad gateway.
func asAPIError(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var upstream *source.UpstreamError
	if errors.As(err, &upstream) {
		code := upstream.StatusCode
		if code < http.StatusBadRequest {
			code = http.StatusBadGateway
		}
		return &apiError{Code: code, ErrCode: ErrCodeUpstream, Message: upstream.Error(), Internal: err}
	}

	if errors.Is(err, source.ErrNotFound) {
		return &apiError{Code: http.StatusNotFound, ErrCode: ErrCodeNotFound, Message: err.Error(), Internal: err}
	}

	return &apiError{Code: http.StatusInternalServerError, ErrCode: ErrCodeInternal, Message: "internal error", Internal: err}
}

// JSONErrorResponse defines the structure of the error response sent to
// clients.
type JSONErrorResponse struct {
	Ok      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// writeError handles logging of failures and writing the JSON error
// response.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := logging.FromContext(ctx)
	resp := asAPIError(err)

	if resp.Internal != nil {
		logger.ErrorContext(ctx, "error processing request",
			"code", resp.Code,
			"error", resp.Internal,
			"message", resp.Message,
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	if err := json.NewEncoder(w).Encode(&JSONErrorResponse{
		Ok:      false,
		Code:    resp.ErrCode,
		Message: resp.Message,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to write json response", "error", err)
	}
}

// writeResult writes a successful JSON response.
func writeResult(ctx context.Context, w http.ResponseWriter, result any) {
	logger := logging.FromContext(ctx)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.ErrorContext(ctx, "failed to write json response", "error", err)
	}
}

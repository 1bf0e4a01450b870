/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package provider implements the second-factor provider adapters.
package provider

import (
	"context"
	"errors"

	"github.com/asgardeo/stepauth/internal/challenge/model"
)

// Provider types supported in the deployment configuration.
const (
	ProviderTypePush   = "push"
	ProviderTypeSMSOTP = "smsotp"
)

// Sentinel errors returned by provider adapters.
var (
	// ErrProviderUnavailable indicates the provider endpoint could not be reached.
	ErrProviderUnavailable = errors.New("second-factor provider is unavailable")
	// ErrInvalidResponse indicates the provider returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("second-factor provider returned an invalid response")
	// ErrRateLimited indicates the outbound rate limit for the provider was exceeded.
	ErrRateLimited = errors.New("second-factor provider rate limit exceeded")
	// ErrUnknownRequest indicates the provider has no record of the given request ID.
	ErrUnknownRequest = errors.New("unknown challenge request")
)

// SecondFactorProviderInterface defines the contract for a second-factor provider adapter.
//
// InitiatePairing and InitiateAuthentication return a pending challenge; the
// returned challenge is not stored by the adapter, callers own its lifecycle.
type SecondFactorProviderInterface interface {
	// GetName returns the configured name of the provider.
	GetName() string
	// GetDisplayName returns the human readable name of the provider.
	GetDisplayName() string
	// InitiatePairing issues a challenge that binds a new device or destination to the subject.
	InitiatePairing(ctx context.Context, subject model.Subject) (*model.ChallengeRequest, error)
	// InitiateAuthentication issues a challenge against the subject's existing enrollment.
	InitiateAuthentication(ctx context.Context, subject model.Subject,
		externalUID string) (*model.ChallengeRequest, error)
	// CheckStatus returns the current resolution status of the given challenge.
	CheckStatus(ctx context.Context, requestID string) (model.ChallengeStatus, error)
}

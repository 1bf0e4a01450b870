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

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/asgardeo/stepauth/internal/challenge/model"
	"github.com/asgardeo/stepauth/internal/system/config"
	syshttp "github.com/asgardeo/stepauth/internal/system/http"
	"github.com/asgardeo/stepauth/internal/system/log"
	"github.com/asgardeo/stepauth/internal/system/utils"
)

const pushLoggerComponentName = "PushProvider"

const (
	pushPairPath         = "/v1/notifications/pair"
	pushAuthenticatePath = "/v1/notifications/authenticate"
	pushStatusPath       = "/v1/notifications/status"

	defaultChallengeTimeoutSeconds = 120
	defaultRequestsPerSecond       = 10
	defaultBurst                   = 5
)

// pushNotifyRequest is the payload sent to the push gateway when issuing a challenge.
type pushNotifyRequest struct {
	RequestID string `json:"request_id"`
	Username  string `json:"username"`
	DeviceRef string `json:"device_ref,omitempty"`
	Timeout   int    `json:"timeout"`
}

// pushGatewayResponse is the payload returned by the push gateway.
type pushGatewayResponse struct {
	Result string `json:"result"`
	Status string `json:"status,omitempty"`
}

// PushProvider implements the SecondFactorProviderInterface against an external
// push notification gateway.
type PushProvider struct {
	name           string
	displayName    string
	baseURL        string
	apiKey         string
	timeoutSeconds int
	limiter        *rate.Limiter
	httpClient     syshttp.HTTPClientInterface
}

// NewPushProvider creates a push provider adapter from the given provider configuration.
func NewPushProvider(cfg config.Provider) (SecondFactorProviderInterface, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for push provider: %s", cfg.Name)
	}

	timeoutSeconds := cfg.TimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultChallengeTimeoutSeconds
	}

	requestsPerSecond := cfg.RateLimit.RequestsPerSecond
	if requestsPerSecond <= 0 {
		requestsPerSecond = defaultRequestsPerSecond
	}
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	return &PushProvider{
		name:           cfg.Name,
		displayName:    cfg.DisplayName,
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		timeoutSeconds: timeoutSeconds,
		limiter:        rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		httpClient:     syshttp.GetHTTPClient(),
	}, nil
}

// GetName returns the configured name of the push provider.
func (p *PushProvider) GetName() string {
	return p.name
}

// GetDisplayName returns the human readable name of the push provider.
func (p *PushProvider) GetDisplayName() string {
	if p.displayName != "" {
		return p.displayName
	}
	return p.name
}

// InitiatePairing sends a pairing notification to the push gateway.
func (p *PushProvider) InitiatePairing(ctx context.Context,
	subject model.Subject) (*model.ChallengeRequest, error) {
	challenge := p.newChallenge(model.ChallengeKindPair, subject, "")
	if err := p.notify(ctx, pushPairPath, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// InitiateAuthentication sends an authentication notification to the enrolled device.
func (p *PushProvider) InitiateAuthentication(ctx context.Context, subject model.Subject,
	externalUID string) (*model.ChallengeRequest, error) {
	challenge := p.newChallenge(model.ChallengeKindAuthenticate, subject, externalUID)
	if err := p.notify(ctx, pushAuthenticatePath, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// CheckStatus queries the push gateway for the current status of the challenge.
func (p *PushProvider) CheckStatus(ctx context.Context, requestID string) (model.ChallengeStatus, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, pushLoggerComponentName),
		log.String(log.LoggerKeyProviderName, p.name))

	if !p.limiter.Allow() {
		return "", ErrRateLimited
	}

	statusURL := fmt.Sprintf("%s%s?request_id=%s", p.baseURL, pushStatusPath, requestID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create status request: %w", err)
	}
	p.setAuthHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logger.Error("Failed to query challenge status", log.Error(err))
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("Failed to close response body", log.Error(closeErr))
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrUnknownRequest
	}
	if resp.StatusCode != http.StatusOK {
		logger.Error("Unexpected status code from push gateway", log.Int("statusCode", resp.StatusCode))
		return "", fmt.Errorf("%w: status code %d", ErrInvalidResponse, resp.StatusCode)
	}

	var gwResp pushGatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	status := model.ChallengeStatus(gwResp.Status)
	switch status {
	case model.ChallengeStatusPending, model.ChallengeStatusApproved,
		model.ChallengeStatusDeclined, model.ChallengeStatusExpired:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidResponse, gwResp.Status)
	}
}

func (p *PushProvider) newChallenge(kind model.ChallengeKind, subject model.Subject,
	deviceRef string) *model.ChallengeRequest {
	return &model.ChallengeRequest{
		RequestID:      utils.GenerateUUID(),
		Kind:           kind,
		Provider:       p.name,
		Subject:        subject,
		DeviceRef:      deviceRef,
		IssuedAt:       time.Now(),
		TimeoutSeconds: p.timeoutSeconds,
		Status:         model.ChallengeStatusPending,
	}
}

// notify posts a challenge notification to the push gateway.
func (p *PushProvider) notify(ctx context.Context, path string,
	challenge *model.ChallengeRequest) error {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, pushLoggerComponentName),
		log.String(log.LoggerKeyProviderName, p.name))

	if !p.limiter.Allow() {
		return ErrRateLimited
	}

	payload, err := json.Marshal(pushNotifyRequest{
		RequestID: challenge.RequestID,
		Username:  challenge.Subject.Username,
		DeviceRef: challenge.DeviceRef,
		Timeout:   challenge.TimeoutSeconds,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path,
		bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.setAuthHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logger.Error("Failed to send challenge notification", log.Error(err))
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("Failed to close response body", log.Error(closeErr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Unexpected status code from push gateway", log.Int("statusCode", resp.StatusCode))
		return fmt.Errorf("%w: status code %d", ErrInvalidResponse, resp.StatusCode)
	}

	var gwResp pushGatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if gwResp.Result != "ok" {
		return fmt.Errorf("%w: result %q", ErrInvalidResponse, gwResp.Result)
	}

	logger.Debug("Challenge notification sent", log.String(log.LoggerKeyChallengeID, challenge.RequestID),
		log.String("kind", string(challenge.Kind)))
	return nil
}

func (p *PushProvider) setAuthHeaders(req *http.Request) {
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
}

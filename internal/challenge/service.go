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

// Package challenge implements issuing and resolving second-factor challenges.
package challenge

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/asgardeo/stepauth/internal/challenge/model"
	"github.com/asgardeo/stepauth/internal/challenge/store"
	"github.com/asgardeo/stepauth/internal/provider"
	"github.com/asgardeo/stepauth/internal/system/config"
	"github.com/asgardeo/stepauth/internal/system/error/serviceerror"
	"github.com/asgardeo/stepauth/internal/system/log"
	"github.com/asgardeo/stepauth/internal/system/metrics"
)

const loggerComponentName = "ChallengeService"

// ChallengeServiceInterface defines the contract for challenge operations.
type ChallengeServiceInterface interface {
	// IssueChallenge issues a challenge through the named provider. An
	// outstanding pending challenge for the same subject and kind is reused
	// instead of issuing a duplicate.
	IssueChallenge(ctx context.Context, providerName string, kind model.ChallengeKind,
		subject model.Subject, externalUID string) (*model.ChallengeRequest, *serviceerror.ServiceError)
	// AwaitResolution blocks until the challenge reaches a terminal status or
	// its deadline passes.
	AwaitResolution(ctx context.Context, requestID string) (*model.Resolution, *serviceerror.ServiceError)
	// GetChallenge returns the stored challenge with the given request ID.
	GetChallenge(requestID string) (*model.ChallengeRequest, bool)
	// VerifyCode matches a user-submitted code against the challenge and
	// approves it on success. A mismatch leaves the challenge pending.
	VerifyCode(requestID, code string) (*model.Resolution, *serviceerror.ServiceError)
	// ResolveCallback applies a provider callback carrying a terminal status and
	// an optional provider-assigned external reference.
	ResolveCallback(requestID string, status model.ChallengeStatus,
		externalRef string) *serviceerror.ServiceError
	// AbandonChallenge drops the challenge so it can no longer be resolved.
	AbandonChallenge(requestID string)
}

// challengeService is the default implementation of ChallengeServiceInterface.
type challengeService struct {
	providers      provider.ProviderServiceInterface
	challengeStore store.ChallengeStoreInterface
	strategy       ResolutionStrategyInterface
	hub            *callbackHub
}

var (
	instance *challengeService
	once     sync.Once
)

// GetChallengeService returns the singleton challenge service configured from
// the deployment configuration.
func GetChallengeService() ChallengeServiceInterface {
	once.Do(func() {
		challengeConfig := config.GetStepAuthRuntime().Config.Challenge
		providers := provider.GetProviderService()
		challengeStore := store.GetChallengeStore()

		var strategy ResolutionStrategyInterface
		if challengeConfig.ResolutionStrategy == ResolutionStrategyCallback {
			strategy = NewCallbackStrategy(challengeStore)
		} else {
			strategy = NewPollingStrategy(providers,
				time.Duration(challengeConfig.PollIntervalSeconds)*time.Second)
		}

		instance = newChallengeService(providers, challengeStore, strategy)
	})
	return instance
}

// NewChallengeService creates a challenge service with explicit collaborators.
func NewChallengeService(providers provider.ProviderServiceInterface,
	challengeStore store.ChallengeStoreInterface,
	strategy ResolutionStrategyInterface) ChallengeServiceInterface {
	return newChallengeService(providers, challengeStore, strategy)
}

func newChallengeService(providers provider.ProviderServiceInterface,
	challengeStore store.ChallengeStoreInterface, strategy ResolutionStrategyInterface) *challengeService {
	return &challengeService{
		providers:      providers,
		challengeStore: challengeStore,
		strategy:       strategy,
		hub:            getCallbackHub(),
	}
}

// IssueChallenge issues a challenge through the named provider.
func (s *challengeService) IssueChallenge(ctx context.Context, providerName string,
	kind model.ChallengeKind, subject model.Subject,
	externalUID string) (*model.ChallengeRequest, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyProviderName, providerName))

	if existing, found := s.challengeStore.GetPending(providerName, kind, subject.UserID); found {
		logger.Debug("Reusing outstanding pending challenge",
			log.String(log.LoggerKeyChallengeID, existing.RequestID))
		return existing, nil
	}

	prov, err := s.providers.GetProvider(providerName)
	if err != nil {
		logger.Error("Failed to resolve provider", log.Error(err))
		return nil, &ErrorInternalServerError
	}

	var challenge *model.ChallengeRequest
	switch kind {
	case model.ChallengeKindPair:
		challenge, err = prov.InitiatePairing(ctx, subject)
	case model.ChallengeKindAuthenticate:
		challenge, err = prov.InitiateAuthentication(ctx, subject, externalUID)
	default:
		return nil, &ErrorInternalServerError
	}
	if err != nil {
		logger.Error("Failed to issue challenge", log.Error(err), log.String("kind", string(kind)))
		if errors.Is(err, provider.ErrProviderUnavailable) || errors.Is(err, provider.ErrRateLimited) {
			return nil, &ErrorProviderUnavailable
		}
		return nil, &ErrorInternalServerError
	}

	s.challengeStore.Add(challenge)
	metrics.GetMetrics().ChallengesIssued.WithLabelValues(providerName, string(kind)).Inc()

	logger.Debug("Challenge issued", log.String(log.LoggerKeyChallengeID, challenge.RequestID),
		log.String("kind", string(kind)))
	return challenge, nil
}

// AwaitResolution blocks until the challenge resolves or its deadline passes.
func (s *challengeService) AwaitResolution(ctx context.Context,
	requestID string) (*model.Resolution, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyChallengeID, requestID))

	challenge, found := s.challengeStore.Get(requestID)
	if !found {
		return nil, &ErrorChallengeNotFound
	}
	if challenge.Status.IsTerminal() {
		return s.resolutionFor(challenge, challenge.Status), nil
	}

	status, err := s.strategy.Await(ctx, challenge)
	if err != nil {
		logger.Error("Failed to await challenge resolution", log.Error(err))
		if errors.Is(err, provider.ErrProviderUnavailable) || errors.Is(err, provider.ErrRateLimited) {
			return nil, &ErrorProviderUnavailable
		}
		return nil, &ErrorInternalServerError
	}

	updated, ok := s.challengeStore.UpdateStatus(requestID, status)
	if !ok {
		return nil, &ErrorChallengeNotFound
	}
	metrics.GetMetrics().ChallengesResolved.WithLabelValues(string(updated.Status)).Inc()

	logger.Debug("Challenge resolved", log.String("status", string(updated.Status)))
	return s.resolutionFor(updated, updated.Status), nil
}

// VerifyCode matches the submitted code against the challenge.
func (s *challengeService) VerifyCode(requestID,
	code string) (*model.Resolution, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyChallengeID, requestID))

	challenge, found := s.challengeStore.Get(requestID)
	if !found {
		return nil, &ErrorChallengeNotFound
	}
	if challenge.Status.IsTerminal() {
		if challenge.Status == model.ChallengeStatusApproved {
			return s.resolutionFor(challenge, challenge.Status), nil
		}
		return nil, &ErrorChallengeExpired
	}
	if time.Now().After(challenge.ExpiresAt()) {
		s.resolve(requestID, model.ChallengeStatusExpired)
		return nil, &ErrorChallengeExpired
	}

	if challenge.Code == "" ||
		subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		logger.Debug("Verification code mismatch")
		return nil, &ErrorInvalidCode
	}

	updated := s.resolve(requestID, model.ChallengeStatusApproved)
	if updated == nil {
		return nil, &ErrorChallengeNotFound
	}
	return s.resolutionFor(updated, updated.Status), nil
}

// GetChallenge returns the stored challenge with the given request ID.
func (s *challengeService) GetChallenge(requestID string) (*model.ChallengeRequest, bool) {
	return s.challengeStore.Get(requestID)
}

// ResolveCallback applies a provider callback carrying a terminal status.
func (s *challengeService) ResolveCallback(requestID string, status model.ChallengeStatus,
	externalRef string) *serviceerror.ServiceError {
	if !status.IsTerminal() {
		return &ErrorInvalidStatus
	}
	if _, found := s.challengeStore.Get(requestID); !found {
		return &ErrorChallengeNotFound
	}

	if externalRef != "" {
		s.challengeStore.UpdateDeviceRef(requestID, externalRef)
	}
	s.resolve(requestID, status)
	return nil
}

// AbandonChallenge drops the challenge so it can no longer be resolved.
func (s *challengeService) AbandonChallenge(requestID string) {
	s.challengeStore.Remove(requestID)
}

// resolve transitions the challenge, records the metric and wakes any waiters.
func (s *challengeService) resolve(requestID string,
	status model.ChallengeStatus) *model.ChallengeRequest {
	updated, ok := s.challengeStore.UpdateStatus(requestID, status)
	if !ok {
		return nil
	}
	metrics.GetMetrics().ChallengesResolved.WithLabelValues(string(updated.Status)).Inc()
	s.hub.notify(requestID, updated.Status)
	return updated
}

func (s *challengeService) resolutionFor(challenge *model.ChallengeRequest,
	status model.ChallengeStatus) *model.Resolution {
	return &model.Resolution{
		RequestID:   challenge.RequestID,
		Status:      status,
		ExternalRef: challenge.DeviceRef,
	}
}

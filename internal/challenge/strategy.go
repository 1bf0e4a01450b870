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

package challenge

import (
	"context"
	"time"

	"github.com/asgardeo/stepauth/internal/challenge/model"
	"github.com/asgardeo/stepauth/internal/challenge/store"
	"github.com/asgardeo/stepauth/internal/provider"
	"github.com/asgardeo/stepauth/internal/system/log"
)

// Resolution strategy names supported in the deployment configuration.
const (
	ResolutionStrategyPolling  = "polling"
	ResolutionStrategyCallback = "callback"
)

const (
	strategyLoggerComponentName = "ResolutionStrategy"
	defaultPollInterval         = 2 * time.Second
)

// ResolutionStrategyInterface defines how a pending challenge is driven to a
// terminal status. Await blocks until the challenge resolves, the deadline
// passes, or the context is cancelled.
type ResolutionStrategyInterface interface {
	Await(ctx context.Context, challenge *model.ChallengeRequest) (model.ChallengeStatus, error)
}

// pollingStrategy resolves challenges by repeatedly querying the provider.
type pollingStrategy struct {
	providers    provider.ProviderServiceInterface
	pollInterval time.Duration
}

// NewPollingStrategy creates a polling resolution strategy. A non-positive
// interval falls back to the default of two seconds.
func NewPollingStrategy(providers provider.ProviderServiceInterface,
	pollInterval time.Duration) ResolutionStrategyInterface {
	if providers == nil {
		providers = provider.GetProviderService()
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &pollingStrategy{
		providers:    providers,
		pollInterval: pollInterval,
	}
}

// Await polls the provider until the challenge reaches a terminal status or its
// deadline passes. Transport failures abort the wait.
func (s *pollingStrategy) Await(ctx context.Context,
	challenge *model.ChallengeRequest) (model.ChallengeStatus, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, strategyLoggerComponentName),
		log.String(log.LoggerKeyChallengeID, challenge.RequestID))

	prov, err := s.providers.GetProvider(challenge.Provider)
	if err != nil {
		return "", err
	}

	deadline := challenge.ExpiresAt()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		status, err := prov.CheckStatus(ctx, challenge.RequestID)
		if err != nil {
			logger.Error("Challenge status check failed", log.Error(err))
			return "", err
		}
		if status.IsTerminal() {
			return status, nil
		}
		if !time.Now().Before(deadline) {
			return model.ChallengeStatusExpired, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// callbackStrategy resolves challenges from provider callbacks delivered
// through the callback hub.
type callbackStrategy struct {
	hub            *callbackHub
	challengeStore store.ChallengeStoreInterface
}

// NewCallbackStrategy creates a callback resolution strategy.
func NewCallbackStrategy(challengeStore store.ChallengeStoreInterface) ResolutionStrategyInterface {
	if challengeStore == nil {
		challengeStore = store.GetChallengeStore()
	}
	return &callbackStrategy{
		hub:            getCallbackHub(),
		challengeStore: challengeStore,
	}
}

// Await blocks until a callback resolves the challenge or its deadline passes.
func (s *callbackStrategy) Await(ctx context.Context,
	challenge *model.ChallengeRequest) (model.ChallengeStatus, error) {
	ch := s.hub.subscribe(challenge.RequestID)
	defer s.hub.unsubscribe(challenge.RequestID, ch)

	// A callback may have landed before the subscription.
	if current, found := s.challengeStore.Get(challenge.RequestID); found && current.Status.IsTerminal() {
		return current.Status, nil
	}

	timer := time.NewTimer(time.Until(challenge.ExpiresAt()))
	defer timer.Stop()

	select {
	case status := <-ch:
		return status, nil
	case <-timer.C:
		return model.ChallengeStatusExpired, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

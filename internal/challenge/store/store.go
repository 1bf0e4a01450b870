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

// Package store provides the in-memory store for outstanding second-factor challenges.
package store

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/asgardeo/stepauth/internal/challenge/model"
)

const (
	defaultChallengeExpiration = 10 * time.Minute
	cleanupInterval            = 5 * time.Minute

	// expirationGraceSeconds keeps a resolved challenge readable slightly past its deadline.
	expirationGraceSeconds = 30
)

// ChallengeStoreInterface defines the contract for the challenge store.
type ChallengeStoreInterface interface {
	// Add stores the challenge and indexes it as the pending challenge for its subject.
	Add(challenge *model.ChallengeRequest)
	// Get returns the challenge with the given request ID.
	Get(requestID string) (*model.ChallengeRequest, bool)
	// GetPending returns the outstanding pending challenge for the given provider, kind and user.
	GetPending(provider string, kind model.ChallengeKind, userID string) (*model.ChallengeRequest, bool)
	// UpdateStatus transitions the challenge to the given status. Terminal statuses are sticky.
	UpdateStatus(requestID string, status model.ChallengeStatus) (*model.ChallengeRequest, bool)
	// UpdateDeviceRef records the provider-assigned device reference on the challenge.
	UpdateDeviceRef(requestID, deviceRef string) (*model.ChallengeRequest, bool)
	// Remove deletes the challenge and its pending index entry.
	Remove(requestID string)
}

// challengeStore is the go-cache backed implementation of ChallengeStoreInterface.
type challengeStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

var (
	instance *challengeStore
	once     sync.Once
)

// GetChallengeStore returns the singleton challenge store.
func GetChallengeStore() ChallengeStoreInterface {
	once.Do(func() {
		instance = newChallengeStore()
	})
	return instance
}

// NewChallengeStore creates an independent challenge store.
func NewChallengeStore() ChallengeStoreInterface {
	return newChallengeStore()
}

func newChallengeStore() *challengeStore {
	return &challengeStore{
		cache: gocache.New(defaultChallengeExpiration, cleanupInterval),
	}
}

func pendingIndexKey(provider string, kind model.ChallengeKind, userID string) string {
	return fmt.Sprintf("pending:%s:%s:%s", provider, kind, userID)
}

// Add stores the challenge keyed by request ID and records it as the pending
// challenge for its subject, replacing any previous pending entry.
func (s *challengeStore) Add(challenge *model.ChallengeRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ttl := time.Duration(challenge.TimeoutSeconds+expirationGraceSeconds) * time.Second
	s.cache.Set(challenge.RequestID, challenge, ttl)
	s.cache.Set(pendingIndexKey(challenge.Provider, challenge.Kind, challenge.Subject.UserID),
		challenge.RequestID, ttl)
}

// Get returns the challenge with the given request ID.
func (s *challengeStore) Get(requestID string) (*model.ChallengeRequest, bool) {
	value, found := s.cache.Get(requestID)
	if !found {
		return nil, false
	}
	challenge, ok := value.(*model.ChallengeRequest)
	if !ok {
		return nil, false
	}
	return challenge, true
}

// GetPending returns the outstanding pending challenge for the given provider,
// kind and user, if one exists and has not reached a terminal status or its deadline.
func (s *challengeStore) GetPending(provider string, kind model.ChallengeKind,
	userID string) (*model.ChallengeRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, found := s.cache.Get(pendingIndexKey(provider, kind, userID))
	if !found {
		return nil, false
	}
	requestID, ok := value.(string)
	if !ok {
		return nil, false
	}

	challenge, found := s.Get(requestID)
	if !found || challenge.Status.IsTerminal() || time.Now().After(challenge.ExpiresAt()) {
		return nil, false
	}
	return challenge, true
}

// UpdateStatus transitions the challenge to the given status and returns the
// updated challenge. A challenge already in a terminal status is left unchanged.
func (s *challengeStore) UpdateStatus(requestID string,
	status model.ChallengeStatus) (*model.ChallengeRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, found := s.Get(requestID)
	if !found {
		return nil, false
	}
	if challenge.Status.IsTerminal() {
		return challenge, true
	}

	updated := *challenge
	updated.Status = status

	ttl := time.Until(updated.ExpiresAt()) + expirationGraceSeconds*time.Second
	if ttl <= 0 {
		ttl = expirationGraceSeconds * time.Second
	}
	s.cache.Set(requestID, &updated, ttl)
	return &updated, true
}

// UpdateDeviceRef records the provider-assigned device reference on the challenge.
func (s *challengeStore) UpdateDeviceRef(requestID, deviceRef string) (*model.ChallengeRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, found := s.Get(requestID)
	if !found {
		return nil, false
	}

	updated := *challenge
	updated.DeviceRef = deviceRef

	ttl := time.Until(updated.ExpiresAt()) + expirationGraceSeconds*time.Second
	if ttl <= 0 {
		ttl = expirationGraceSeconds * time.Second
	}
	s.cache.Set(requestID, &updated, ttl)
	return &updated, true
}

// Remove deletes the challenge and its pending index entry.
func (s *challengeStore) Remove(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, found := s.Get(requestID)
	if found {
		s.cache.Delete(pendingIndexKey(challenge.Provider, challenge.Kind, challenge.Subject.UserID))
	}
	s.cache.Delete(requestID)
}

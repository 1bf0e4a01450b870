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

package session

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/asgardeo/stepauth/internal/system/config"
	"github.com/asgardeo/stepauth/internal/system/utils"
)

const (
	defaultSessionValidityPeriod = 15 * time.Minute
	sessionCleanupInterval       = 5 * time.Minute
)

// SessionStoreInterface defines the contract for the authentication session store.
type SessionStoreInterface interface {
	// CreateSession creates a new in-progress session for the given user.
	CreateSession(userID, username string, totalSteps int) *AuthSession
	// GetSession returns the session with the given ID.
	GetSession(sessionID string) (*AuthSession, bool)
	// UpdateSession persists the given session, refreshing its validity period.
	UpdateSession(session *AuthSession)
	// DeleteSession removes the session with the given ID.
	DeleteSession(sessionID string)
}

// sessionStore is the go-cache backed implementation of SessionStoreInterface.
type sessionStore struct {
	cache    *gocache.Cache
	validity time.Duration
}

var (
	instance *sessionStore
	once     sync.Once
)

// GetSessionStore returns the singleton session store configured from the
// deployment configuration.
func GetSessionStore() SessionStoreInterface {
	once.Do(func() {
		validity := defaultSessionValidityPeriod
		if seconds := config.GetStepAuthRuntime().Config.Session.ValidityPeriodSeconds; seconds > 0 {
			validity = time.Duration(seconds) * time.Second
		}
		instance = newSessionStore(validity)
	})
	return instance
}

// NewSessionStore creates an independent session store with the given validity period.
func NewSessionStore(validity time.Duration) SessionStoreInterface {
	if validity <= 0 {
		validity = defaultSessionValidityPeriod
	}
	return newSessionStore(validity)
}

func newSessionStore(validity time.Duration) *sessionStore {
	return &sessionStore{
		cache:    gocache.New(validity, sessionCleanupInterval),
		validity: validity,
	}
}

// CreateSession creates a new in-progress session for the given user.
func (s *sessionStore) CreateSession(userID, username string, totalSteps int) *AuthSession {
	session := &AuthSession{
		SessionID:         utils.GenerateUUID(),
		UserID:            userID,
		Username:          username,
		CurrentStep:       1,
		TotalSteps:        totalSteps,
		State:             SessionStateInProgress,
		WorkingParameters: make(map[string]string),
		CreatedAt:         time.Now(),
	}
	s.cache.Set(session.SessionID, session, s.validity)
	return session
}

// GetSession returns the session with the given ID.
func (s *sessionStore) GetSession(sessionID string) (*AuthSession, bool) {
	value, found := s.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	session, ok := value.(*AuthSession)
	if !ok {
		return nil, false
	}
	return session, true
}

// UpdateSession persists the given session, refreshing its validity period.
func (s *sessionStore) UpdateSession(session *AuthSession) {
	s.cache.Set(session.SessionID, session, s.validity)
}

// DeleteSession removes the session with the given ID.
func (s *sessionStore) DeleteSession(sessionID string) {
	s.cache.Delete(sessionID)
}

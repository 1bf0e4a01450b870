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

// Package session provides the in-memory authentication session store.
package session

import (
	"time"

	"github.com/asgardeo/stepauth/internal/system/utils"
)

// SessionState represents the lifecycle state of an authentication session.
type SessionState string

// Session states.
const (
	SessionStateInProgress    SessionState = "in_progress"
	SessionStateAuthenticated SessionState = "authenticated"
	SessionStateFailed        SessionState = "failed"
)

// AuthSession holds the state of an in-flight multi-step authentication.
//
// WorkingParameters carries transient values produced by one step and consumed
// by a later one. On every step advance the map is pruned down to the keys the
// finishing step declared as exposed, so stale values never leak forward.
type AuthSession struct {
	SessionID         string            `json:"sessionId"`
	UserID            string            `json:"userId"`
	Username          string            `json:"username"`
	CurrentStep       int               `json:"currentStep"`
	TotalSteps        int               `json:"totalSteps"`
	State             SessionState      `json:"state"`
	WorkingParameters map[string]string `json:"workingParameters,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// SetWorkingParameter records a transient value for later steps.
func (s *AuthSession) SetWorkingParameter(key, value string) {
	if s.WorkingParameters == nil {
		s.WorkingParameters = make(map[string]string)
	}
	s.WorkingParameters[key] = value
}

// GetWorkingParameter returns the transient value stored under the given key.
func (s *AuthSession) GetWorkingParameter(key string) (string, bool) {
	value, ok := s.WorkingParameters[key]
	return value, ok
}

// PruneWorkingParameters drops every working parameter whose key is not in the
// exposed set.
func (s *AuthSession) PruneWorkingParameters(exposedKeys []string) {
	s.WorkingParameters = utils.FilterStringMap(s.WorkingParameters, exposedKeys)
}

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
	"sync"

	"github.com/asgardeo/stepauth/internal/challenge/model"
)

// callbackHub fans provider callbacks out to waiters blocked on a challenge.
// Each waiter gets a buffered channel so a callback arriving before the waiter
// subscribes again is never lost within a single wait.
type callbackHub struct {
	mu      sync.Mutex
	waiters map[string][]chan model.ChallengeStatus
}

var (
	hubInstance *callbackHub
	hubOnce     sync.Once
)

// getCallbackHub returns the singleton callback hub.
func getCallbackHub() *callbackHub {
	hubOnce.Do(func() {
		hubInstance = &callbackHub{
			waiters: make(map[string][]chan model.ChallengeStatus),
		}
	})
	return hubInstance
}

// subscribe registers a waiter for the given request ID.
func (h *callbackHub) subscribe(requestID string) chan model.ChallengeStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan model.ChallengeStatus, 1)
	h.waiters[requestID] = append(h.waiters[requestID], ch)
	return ch
}

// unsubscribe removes a waiter for the given request ID.
func (h *callbackHub) unsubscribe(requestID string, ch chan model.ChallengeStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	waiters := h.waiters[requestID]
	for i, waiter := range waiters {
		if waiter == ch {
			h.waiters[requestID] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(h.waiters[requestID]) == 0 {
		delete(h.waiters, requestID)
	}
}

// notify delivers the status to all waiters of the given request ID.
func (h *callbackHub) notify(requestID string, status model.ChallengeStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, waiter := range h.waiters[requestID] {
		select {
		case waiter <- status:
		default:
		}
	}
	delete(h.waiters, requestID)
}

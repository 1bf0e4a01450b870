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

// Package model defines the data structures for second-factor challenges.
package model

import "time"

// ChallengeKind identifies the purpose of a challenge.
type ChallengeKind string

// Challenge kinds.
const (
	// ChallengeKindPair is issued to bind a new device or destination to the user.
	ChallengeKindPair ChallengeKind = "pair"
	// ChallengeKindAuthenticate is issued to verify an already enrolled user.
	ChallengeKindAuthenticate ChallengeKind = "authenticate"
)

// ChallengeStatus represents the resolution state of a challenge.
type ChallengeStatus string

// Challenge statuses.
const (
	ChallengeStatusPending  ChallengeStatus = "pending"
	ChallengeStatusApproved ChallengeStatus = "approved"
	ChallengeStatusDeclined ChallengeStatus = "declined"
	ChallengeStatusExpired  ChallengeStatus = "expired"
)

// IsTerminal returns true if the status can no longer change.
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeStatusApproved || s == ChallengeStatusDeclined || s == ChallengeStatusExpired
}

// Subject identifies the user a challenge is issued for.
type Subject struct {
	UserID     string            `json:"userId"`
	Username   string            `json:"username"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ChallengeRequest represents an outstanding second-factor challenge.
type ChallengeRequest struct {
	RequestID      string          `json:"requestId"`
	Kind           ChallengeKind   `json:"kind"`
	Provider       string          `json:"provider"`
	Subject        Subject         `json:"subject"`
	DeviceRef      string          `json:"deviceRef,omitempty"`
	Code           string          `json:"-"`
	IssuedAt       time.Time       `json:"issuedAt"`
	TimeoutSeconds int             `json:"timeoutSeconds"`
	Status         ChallengeStatus `json:"status"`
}

// ExpiresAt returns the wall-clock deadline of the challenge.
func (c *ChallengeRequest) ExpiresAt() time.Time {
	return c.IssuedAt.Add(time.Duration(c.TimeoutSeconds) * time.Second)
}

// Resolution represents the terminal outcome of a challenge.
type Resolution struct {
	RequestID   string          `json:"requestId"`
	Status      ChallengeStatus `json:"status"`
	ExternalRef string          `json:"externalRef,omitempty"`
}

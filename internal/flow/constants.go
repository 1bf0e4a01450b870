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

package flow

// Request parameter names accepted by the authenticate operation.
const (
	ParamUsername = "username"
	ParamPassword = "password"
	ParamCode     = "code"
)

// Working parameter keys carried across steps within a session.
const (
	paramProviderName       = "providerName"
	paramPairingRequestID   = "pairingRequestId"
	paramChallengeRequestID = "challengeRequestId"
)

// Step numbers. The credential step is always first; whether the pairing step
// exists depends on the enrollment state of the user.
const (
	stepCredential = 1

	totalStepsEnrolled    = 2
	totalStepsNotEnrolled = 3
)

// Pages rendered per step.
const (
	pageLogin  = "/pages/login"
	pagePair   = "/pages/pair"
	pageVerify = "/pages/verify"
)

// User-visible step messages. Internal error details are only logged server-side.
const (
	messageInvalidCredentials = "invalid credentials"
	messageDeclined           = "declined"
	messageExpired            = "expired"
	messageWrongCode          = "wrong code"
	messageTryAgain           = "try again"
)

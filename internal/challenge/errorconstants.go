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

import "github.com/asgardeo/stepauth/internal/system/error/serviceerror"

// Client errors for challenge operations.
var (
	// ErrorChallengeNotFound is the error when the requested challenge does not exist.
	ErrorChallengeNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "CHAL-1001",
		Error:            "Challenge not found",
		ErrorDescription: "No challenge exists for the given request identifier",
	}
	// ErrorInvalidCode is the error when the submitted verification code does not match.
	ErrorInvalidCode = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "CHAL-1002",
		Error:            "Invalid verification code",
		ErrorDescription: "The submitted verification code does not match the challenge",
	}
	// ErrorChallengeExpired is the error when the challenge deadline has passed.
	ErrorChallengeExpired = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "CHAL-1003",
		Error:            "Challenge expired",
		ErrorDescription: "The challenge was not resolved before its deadline",
	}
	// ErrorInvalidStatus is the error when a callback carries an unsupported status.
	ErrorInvalidStatus = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "CHAL-1004",
		Error:            "Invalid challenge status",
		ErrorDescription: "The provided challenge status is not a valid terminal status",
	}
)

// Server errors for challenge operations.
var (
	// ErrorProviderUnavailable is the error when the second-factor provider cannot be reached.
	ErrorProviderUnavailable = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "CHAL-5001",
		Error:            "Provider unavailable",
		ErrorDescription: "The second-factor provider could not be reached",
	}
	// ErrorInternalServerError is the generic server error for challenge operations.
	ErrorInternalServerError = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "CHAL-5002",
		Error:            "Internal server error",
		ErrorDescription: "An unexpected error occurred while processing the challenge",
	}
)

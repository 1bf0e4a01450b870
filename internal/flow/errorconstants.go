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

import "github.com/asgardeo/stepauth/internal/system/error/serviceerror"

// Client errors for the authentication flow.
var (
	// ErrorInvalidRequest is the error when the request payload is malformed.
	ErrorInvalidRequest = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "FLOW-1001",
		Error:            "Invalid request",
		ErrorDescription: "The request payload is malformed or missing required fields",
	}
	// ErrorSessionNotFound is the error when the session does not exist or has expired.
	ErrorSessionNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "FLOW-1002",
		Error:            "Session not found",
		ErrorDescription: "No authentication session exists for the given identifier",
	}
	// ErrorStateMismatch is the error when the requested step does not match the session state.
	ErrorStateMismatch = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "FLOW-1003",
		Error:            "State mismatch",
		ErrorDescription: "The requested step does not match the current session state",
	}
	// ErrorFlowFailed is the error when the session has already reached a failed state.
	ErrorFlowFailed = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "FLOW-1004",
		Error:            "Authentication flow failed",
		ErrorDescription: "The authentication session has failed and cannot continue",
	}
)

// Server errors for the authentication flow.
var (
	// ErrorInternalServerError is the generic server error for the authentication flow.
	ErrorInternalServerError = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "FLOW-5001",
		Error:            "Internal server error",
		ErrorDescription: "An unexpected error occurred while processing the authentication flow",
	}
)

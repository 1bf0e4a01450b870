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

package user

import "github.com/asgardeo/stepauth/internal/system/error/serviceerror"

// Client errors for user management operations.
var (
	// ErrorUserNotFound is the error when the requested user cannot be found.
	ErrorUserNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "USR-1001",
		Error:            "User not found",
		ErrorDescription: "The user could not be found in the directory",
	}
	// ErrorAuthenticationFailed is the error when the provided credentials do not match.
	ErrorAuthenticationFailed = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "USR-1002",
		Error:            "Authentication failed",
		ErrorDescription: "The provided credentials are invalid",
	}
	// ErrorDuplicateEnrollment is the error when an external identity is already bound to another user.
	ErrorDuplicateEnrollment = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "USR-1003",
		Error:            "Duplicate enrollment",
		ErrorDescription: "The external identity is already enrolled for a different user",
	}
	// ErrorUserAlreadyExists is the error when a user with the same username already exists.
	ErrorUserAlreadyExists = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "USR-1004",
		Error:            "User already exists",
		ErrorDescription: "A user with the same username already exists in the directory",
	}
)

// Server errors for user management operations.
var (
	// ErrorInternalServerError is the generic server error for directory operations.
	ErrorInternalServerError = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "USR-5001",
		Error:            "Internal server error",
		ErrorDescription: "An unexpected error occurred while accessing the directory",
	}
)

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

package credentials

import "github.com/asgardeo/stepauth/internal/system/error/serviceerror"

// Client errors for credentials authentication.
var (
	// ErrorEmptyCredentials is the error when the provided username or password is empty.
	ErrorEmptyCredentials = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "AUTH-CRED-1001",
		Error:            "Empty credentials",
		ErrorDescription: "The username or password cannot be empty",
	}
	// ErrorInvalidCredentials is the error when the provided credentials are invalid.
	ErrorInvalidCredentials = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "AUTH-CRED-1002",
		Error:            "Invalid credentials",
		ErrorDescription: "The provided credentials are invalid",
	}
)

// Server errors for credentials authentication.
var (
	// ErrorInternalServerError is the generic server error for credential validation.
	ErrorInternalServerError = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "AUTH-CRED-5001",
		Error:            "Internal server error",
		ErrorDescription: "An unexpected error occurred while validating the credentials",
	}
)

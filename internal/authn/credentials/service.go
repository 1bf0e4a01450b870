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

// Package credentials implements the validator for primary username and password authentication.
package credentials

import (
	authnmodel "github.com/asgardeo/stepauth/internal/authn/model"
	"github.com/asgardeo/stepauth/internal/system/error/serviceerror"
	"github.com/asgardeo/stepauth/internal/system/log"
	"github.com/asgardeo/stepauth/internal/user"
)

const loggerComponentName = "CredentialsAuthnService"

// CredentialsAuthnServiceInterface defines the contract for credentials-based authentication.
type CredentialsAuthnServiceInterface interface {
	Authenticate(username, password string) (*authnmodel.AuthenticatedUser, *serviceerror.ServiceError)
}

// credentialsAuthnService is the default implementation of CredentialsAuthnServiceInterface.
type credentialsAuthnService struct {
	userService user.UserServiceInterface
}

// NewCredentialsAuthnService creates a new instance of the credentials authentication service.
func NewCredentialsAuthnService(userSvc user.UserServiceInterface) CredentialsAuthnServiceInterface {
	if userSvc == nil {
		userSvc = user.GetUserService()
	}

	return &credentialsAuthnService{
		userService: userSvc,
	}
}

// Authenticate validates the given username and password against the directory.
// The validator fails closed: empty credentials or any directory failure is invalid, never success.
func (c *credentialsAuthnService) Authenticate(username, password string) (
	*authnmodel.AuthenticatedUser, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	if username == "" || password == "" {
		return nil, &ErrorEmptyCredentials
	}

	authUser, svcErr := c.userService.AuthenticateUser(username, password)
	if svcErr != nil {
		if svcErr.Type == serviceerror.ClientErrorType {
			logger.Debug("Credential validation failed",
				log.String("username", log.MaskString(username)), log.String("errorCode", svcErr.Code))
			return nil, &ErrorInvalidCredentials
		}

		logger.Error("Error occurred while authenticating the user", log.String("errorCode", svcErr.Code),
			log.String("errorDescription", svcErr.ErrorDescription))
		return nil, &ErrorInternalServerError
	}

	attributes, err := user.UnmarshalAttributes(authUser.Attributes)
	if err != nil {
		logger.Error("Failed to unmarshal user attributes", log.Error(err))
		return nil, &ErrorInternalServerError
	}

	return &authnmodel.AuthenticatedUser{
		IsAuthenticated: true,
		UserID:          authUser.ID,
		Username:        authUser.Username,
		Attributes:      attributes,
	}, nil
}

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

import (
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/asgardeo/stepauth/internal/system/error/serviceerror"
	"github.com/asgardeo/stepauth/internal/system/log"
	"github.com/asgardeo/stepauth/internal/system/utils"
)

const loggerComponentName = "UserService"

// UserServiceInterface defines the interface for the directory service.
type UserServiceInterface interface {
	CreateUser(username, password string, attributes map[string]string) (*User, *serviceerror.ServiceError)
	GetUser(userID string) (*User, *serviceerror.ServiceError)
	GetUserByUsername(username string) (*User, *serviceerror.ServiceError)
	AuthenticateUser(username, password string) (*User, *serviceerror.ServiceError)
	GetUserByAttribute(attrName, attrValue string) (*User, *serviceerror.ServiceError)
	AddEnrollment(userID, providerName, externalUID string) *serviceerror.ServiceError
	GetEnrollment(userID, providerName string) (*Enrollment, *serviceerror.ServiceError)
	RemoveEnrollment(userID, providerName, externalUID string) *serviceerror.ServiceError
}

// userService is the default implementation of UserServiceInterface.
type userService struct {
	store UserStoreInterface
}

var (
	instance *userService
	once     sync.Once
)

// GetUserService returns a singleton instance of the user service.
func GetUserService() UserServiceInterface {
	once.Do(func() {
		instance = &userService{
			store: NewUserStore(),
		}
	})
	return instance
}

// NewUserService creates a user service with the given store.
func NewUserService(store UserStoreInterface) UserServiceInterface {
	return &userService{
		store: store,
	}
}

// CreateUser creates a new user in the directory with a bcrypt-hashed credential.
func (s *userService) CreateUser(username, password string,
	attributes map[string]string) (*User, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	if username == "" || password == "" {
		return nil, &ErrorAuthenticationFailed
	}

	existing, err := s.store.GetUserByUsername(username)
	if err != nil {
		logger.Error("Failed to check for existing user", log.Error(err))
		return nil, &ErrorInternalServerError
	}
	if existing != nil {
		return nil, &ErrorUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash credential", log.Error(err))
		return nil, &ErrorInternalServerError
	}

	newUser := User{
		ID:       utils.GenerateUUID(),
		Username: username,
	}
	if len(attributes) > 0 {
		attrs, err := marshalAttributes(attributes)
		if err != nil {
			logger.Error("Failed to marshal user attributes", log.Error(err))
			return nil, &ErrorInternalServerError
		}
		newUser.Attributes = attrs
	}

	if err := s.store.CreateUser(newUser, string(hash)); err != nil {
		logger.Error("Failed to create user", log.Error(err))
		return nil, &ErrorInternalServerError
	}

	return &newUser, nil
}

// GetUser retrieves a user by user ID.
func (s *userService) GetUser(userID string) (*User, *serviceerror.ServiceError) {
	u, err := s.store.GetUser(userID)
	if err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to retrieve user", log.Error(err))
		return nil, &ErrorInternalServerError
	}
	if u == nil {
		return nil, &ErrorUserNotFound
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username.
func (s *userService) GetUserByUsername(username string) (*User, *serviceerror.ServiceError) {
	u, err := s.store.GetUserByUsername(username)
	if err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to retrieve user by username", log.Error(err))
		return nil, &ErrorInternalServerError
	}
	if u == nil {
		return nil, &ErrorUserNotFound
	}
	return u, nil
}

// AuthenticateUser validates the given username and password against the directory.
// Any failure is reported as invalid credentials, never as success.
func (s *userService) AuthenticateUser(username, password string) (*User, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	if username == "" || password == "" {
		return nil, &ErrorAuthenticationFailed
	}

	userID, credential, err := s.store.GetUserCredential(username)
	if err != nil {
		logger.Error("Failed to retrieve user credential",
			log.String("username", log.MaskString(username)), log.Error(err))
		return nil, &ErrorAuthenticationFailed
	}
	if userID == "" || credential == "" {
		return nil, &ErrorUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(credential), []byte(password)); err != nil {
		logger.Debug("Credential comparison failed", log.String("username", log.MaskString(username)))
		return nil, &ErrorAuthenticationFailed
	}

	return s.GetUser(userID)
}

// GetUserByAttribute retrieves the user holding the given attribute value.
func (s *userService) GetUserByAttribute(attrName, attrValue string) (*User, *serviceerror.ServiceError) {
	users, err := s.store.GetUsersByAttribute(attrName, attrValue)
	if err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to search users by attribute", log.String("attribute", attrName), log.Error(err))
		return nil, &ErrorInternalServerError
	}
	if len(users) == 0 {
		return nil, &ErrorUserNotFound
	}
	return &users[0], nil
}

// AddEnrollment durably binds an external-factor identity to the user.
// Uniqueness is enforced by searching before writing. The read-before-write is not
// transactional; concurrent pairing of the same external identity can race.
func (s *userService) AddEnrollment(userID, providerName, externalUID string) *serviceerror.ServiceError {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	enrollment := Enrollment{UserID: userID, Provider: providerName, ExternalUID: externalUID}
	attrValue := enrollment.AttributeValue()

	existing, svcErr := s.GetUserByAttribute(AttributeExternalUID, attrValue)
	if svcErr != nil && svcErr.Code != ErrorUserNotFound.Code {
		return svcErr
	}
	if existing != nil {
		if existing.ID == userID {
			// Already enrolled for this user.
			return nil
		}
		logger.Warn("External identity already enrolled for a different user",
			log.String("provider", providerName))
		return &ErrorDuplicateEnrollment
	}

	// At most one enrollment per provider per user: replace any stale binding first.
	current, svcErr := s.GetEnrollment(userID, providerName)
	if svcErr != nil {
		return svcErr
	}
	if current != nil {
		if current.ExternalUID == externalUID {
			return nil
		}
		if err := s.store.RemoveUserAttribute(userID, AttributeExternalUID, current.AttributeValue()); err != nil {
			logger.Error("Failed to remove stale enrollment", log.Error(err))
			return &ErrorInternalServerError
		}
	}

	if err := s.store.AddUserAttribute(userID, AttributeExternalUID, attrValue); err != nil {
		logger.Error("Failed to add enrollment attribute", log.Error(err))
		return &ErrorInternalServerError
	}
	return nil
}

// GetEnrollment returns the enrollment for the given provider, or nil when not enrolled.
func (s *userService) GetEnrollment(userID, providerName string) (*Enrollment, *serviceerror.ServiceError) {
	values, err := s.store.GetUserAttributesByPrefix(userID, AttributeExternalUID, providerName+":")
	if err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to retrieve enrollment attributes", log.Error(err))
		return nil, &ErrorInternalServerError
	}
	if len(values) == 0 {
		return nil, nil
	}

	externalUID := strings.TrimPrefix(values[0], providerName+":")
	return &Enrollment{
		UserID:      userID,
		Provider:    providerName,
		ExternalUID: externalUID,
	}, nil
}

// RemoveEnrollment removes the enrollment binding from the user entry.
func (s *userService) RemoveEnrollment(userID, providerName, externalUID string) *serviceerror.ServiceError {
	enrollment := Enrollment{UserID: userID, Provider: providerName, ExternalUID: externalUID}
	if err := s.store.RemoveUserAttribute(userID, AttributeExternalUID, enrollment.AttributeValue()); err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to remove enrollment attribute", log.Error(err))
		return &ErrorInternalServerError
	}
	return nil
}

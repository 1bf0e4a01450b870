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
	"encoding/json"
	"fmt"

	"github.com/asgardeo/stepauth/internal/system/database/client"
	"github.com/asgardeo/stepauth/internal/system/database/provider"
)

// UserStoreInterface defines the persistence operations for users and their attributes.
type UserStoreInterface interface {
	CreateUser(user User, credentialHash string) error
	GetUser(userID string) (*User, error)
	GetUserByUsername(username string) (*User, error)
	GetUserCredential(username string) (string, string, error)
	AddUserAttribute(userID, attrName, attrValue string) error
	RemoveUserAttribute(userID, attrName, attrValue string) error
	GetUsersByAttribute(attrName, attrValue string) ([]User, error)
	GetUserAttributes(userID, attrName string) ([]string, error)
	GetUserAttributesByPrefix(userID, attrName, prefix string) ([]string, error)
}

// userStore is the default implementation of UserStoreInterface.
type userStore struct {
	getClient func() (client.DBClientInterface, error)
}

// NewUserStore creates a user store backed by the identity database.
func NewUserStore() UserStoreInterface {
	return &userStore{
		getClient: func() (client.DBClientInterface, error) {
			return provider.GetDBProvider().GetDBClient()
		},
	}
}

// NewUserStoreWithClient creates a user store with the given database client.
func NewUserStoreWithClient(dbClient client.DBClientInterface) UserStoreInterface {
	return &userStore{
		getClient: func() (client.DBClientInterface, error) {
			return dbClient, nil
		},
	}
}

// CreateUser handles the user creation in the database.
func (s *userStore) CreateUser(user User, credentialHash string) error {
	dbClient, err := s.getClient()
	if err != nil {
		return fmt.Errorf("failed to get database client: %w", err)
	}

	attributes := user.Attributes
	if attributes == nil {
		attributes = json.RawMessage("{}")
	}

	_, err = dbClient.Execute(QueryCreateUser, user.ID, user.Username, credentialHash, string(attributes))
	if err != nil {
		return fmt.Errorf("failed to execute create user query: %w", err)
	}
	return nil
}

// GetUser retrieves a user by user ID. Returns nil when the user does not exist.
func (s *userStore) GetUser(userID string) (*User, error) {
	dbClient, err := s.getClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(QueryGetUserByUserID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return buildUserFromResultRow(results[0])
}

// GetUserByUsername retrieves a user by username. Returns nil when the user does not exist.
func (s *userStore) GetUserByUsername(username string) (*User, error) {
	dbClient, err := s.getClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(QueryGetUserByUsername, username)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return buildUserFromResultRow(results[0])
}

// GetUserCredential retrieves the user ID and stored credential hash for a username.
func (s *userStore) GetUserCredential(username string) (string, string, error) {
	dbClient, err := s.getClient()
	if err != nil {
		return "", "", fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(QueryGetUserCredential, username)
	if err != nil {
		return "", "", fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return "", "", nil
	}

	userID, err := rowString(results[0], "user_id")
	if err != nil {
		return "", "", err
	}
	credential, err := rowString(results[0], "credential")
	if err != nil {
		return "", "", err
	}
	return userID, credential, nil
}

// AddUserAttribute adds a multi-valued attribute value to the user entry.
func (s *userStore) AddUserAttribute(userID, attrName, attrValue string) error {
	dbClient, err := s.getClient()
	if err != nil {
		return fmt.Errorf("failed to get database client: %w", err)
	}

	_, err = dbClient.Execute(QueryAddUserAttribute, userID, attrName, attrValue)
	if err != nil {
		return fmt.Errorf("failed to execute add attribute query: %w", err)
	}
	return nil
}

// RemoveUserAttribute removes a multi-valued attribute value from the user entry.
func (s *userStore) RemoveUserAttribute(userID, attrName, attrValue string) error {
	dbClient, err := s.getClient()
	if err != nil {
		return fmt.Errorf("failed to get database client: %w", err)
	}

	_, err = dbClient.Execute(QueryRemoveUserAttribute, userID, attrName, attrValue)
	if err != nil {
		return fmt.Errorf("failed to execute remove attribute query: %w", err)
	}
	return nil
}

// GetUsersByAttribute retrieves the users holding the given attribute value.
func (s *userStore) GetUsersByAttribute(attrName, attrValue string) ([]User, error) {
	dbClient, err := s.getClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(QueryGetUserByAttribute, attrName, attrValue)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	users := make([]User, 0, len(results))
	for _, row := range results {
		user, err := buildUserFromResultRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to build user from result row: %w", err)
		}
		users = append(users, *user)
	}
	return users, nil
}

// GetUserAttributes lists the values of a multi-valued attribute for a user.
func (s *userStore) GetUserAttributes(userID, attrName string) ([]string, error) {
	dbClient, err := s.getClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(QueryGetUserAttributes, userID, attrName)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return buildAttributeValues(results)
}

// GetUserAttributesByPrefix lists attribute values with the given prefix for a user.
func (s *userStore) GetUserAttributesByPrefix(userID, attrName, prefix string) ([]string, error) {
	dbClient, err := s.getClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(QueryGetUserAttributesByPrefix, userID, attrName, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return buildAttributeValues(results)
}

// buildUserFromResultRow constructs a User from a database result row.
func buildUserFromResultRow(row map[string]interface{}) (*User, error) {
	userID, err := rowString(row, "user_id")
	if err != nil {
		return nil, err
	}
	username, err := rowString(row, "username")
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:       userID,
		Username: username,
	}

	if attributes, ok := row["attributes"]; ok && attributes != nil {
		switch v := attributes.(type) {
		case string:
			user.Attributes = json.RawMessage(v)
		case []byte:
			user.Attributes = json.RawMessage(v)
		default:
			return nil, fmt.Errorf("unexpected type for attributes: %T", attributes)
		}
	}

	return user, nil
}

// buildAttributeValues extracts attribute values from database result rows.
func buildAttributeValues(results []map[string]interface{}) ([]string, error) {
	values := make([]string, 0, len(results))
	for _, row := range results {
		value, err := rowString(row, "attr_value")
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// rowString extracts a string column from a database result row.
func rowString(row map[string]interface{}, column string) (string, error) {
	value, ok := row[column]
	if !ok || value == nil {
		return "", fmt.Errorf("column %s not found in result row", column)
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unexpected type for column %s: %T", column, value)
	}
}

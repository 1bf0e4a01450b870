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

// Package user provides directory service functionality for users and their attributes.
package user

import "encoding/json"

// User represents a user entry in the directory.
type User struct {
	ID         string          `json:"id"`
	Username   string          `json:"username"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

// Enrollment represents the durable link between a user and an external-factor identity.
// The value is stored as a provider-prefixed attribute value, e.g. "pushdemo:device-123".
type Enrollment struct {
	UserID      string
	Provider    string
	ExternalUID string
}

// AttributeValue returns the provider-prefixed attribute value for the enrollment.
func (e Enrollment) AttributeValue() string {
	return e.Provider + ":" + e.ExternalUID
}

const (
	// AttributeExternalUID is the multi-valued user attribute holding external-factor identities.
	AttributeExternalUID = "externalUid"
)

// marshalAttributes serializes a flat attribute map into the stored JSON form.
func marshalAttributes(attributes map[string]string) (json.RawMessage, error) {
	data, err := json.Marshal(attributes)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// UnmarshalAttributes deserializes the stored JSON attributes into a flat map.
func UnmarshalAttributes(raw json.RawMessage) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	var attributes map[string]string
	if err := json.Unmarshal(raw, &attributes); err != nil {
		return nil, err
	}
	return attributes, nil
}

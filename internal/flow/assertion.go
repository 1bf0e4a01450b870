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

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/asgardeo/stepauth/internal/session"
	"github.com/asgardeo/stepauth/internal/system/config"
)

const defaultAssertionValidityPeriod = 300

// issueAssertion mints a signed assertion for a session that completed every step.
func issueAssertion(sess *session.AuthSession) (string, error) {
	assertionConfig := config.GetStepAuthRuntime().Config.Assertion
	if assertionConfig.SigningKey == "" {
		return "", errors.New("assertion signing key is not configured")
	}

	validity := assertionConfig.ValidityPeriodSeconds
	if validity <= 0 {
		validity = defaultAssertionValidityPeriod
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      assertionConfig.Issuer,
		"sub":      sess.UserID,
		"username": sess.Username,
		"sid":      sess.SessionID,
		"iat":      now.Unix(),
		"exp":      now.Add(time.Duration(validity) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(assertionConfig.SigningKey))
}

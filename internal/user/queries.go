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

import "github.com/asgardeo/stepauth/internal/system/database/model"

var (
	// QueryCreateUser is the query to create a new user.
	QueryCreateUser = model.DBQuery{
		ID:    "SAQ-USER_MGT-01",
		Query: "INSERT INTO SA_USER (USER_ID, USERNAME, CREDENTIAL, ATTRIBUTES) VALUES ($1, $2, $3, $4)",
	}
	// QueryGetUserByUserID is the query to get a user by user ID.
	QueryGetUserByUserID = model.DBQuery{
		ID:    "SAQ-USER_MGT-02",
		Query: "SELECT USER_ID, USERNAME, ATTRIBUTES FROM SA_USER WHERE USER_ID = $1",
	}
	// QueryGetUserByUsername is the query to get a user by username.
	QueryGetUserByUsername = model.DBQuery{
		ID:    "SAQ-USER_MGT-03",
		Query: "SELECT USER_ID, USERNAME, ATTRIBUTES FROM SA_USER WHERE USERNAME = $1",
	}
	// QueryGetUserCredential is the query to get the stored credential hash for a username.
	QueryGetUserCredential = model.DBQuery{
		ID:    "SAQ-USER_MGT-04",
		Query: "SELECT USER_ID, CREDENTIAL FROM SA_USER WHERE USERNAME = $1",
	}
	// QueryAddUserAttribute is the query to add a multi-valued attribute to a user.
	QueryAddUserAttribute = model.DBQuery{
		ID:    "SAQ-USER_MGT-05",
		Query: "INSERT INTO SA_USER_ATTRIBUTE (USER_ID, ATTR_NAME, ATTR_VALUE) VALUES ($1, $2, $3)",
	}
	// QueryRemoveUserAttribute is the query to remove a multi-valued attribute value from a user.
	QueryRemoveUserAttribute = model.DBQuery{
		ID:    "SAQ-USER_MGT-06",
		Query: "DELETE FROM SA_USER_ATTRIBUTE WHERE USER_ID = $1 AND ATTR_NAME = $2 AND ATTR_VALUE = $3",
	}
	// QueryGetUserByAttribute is the query to find users holding a given attribute value.
	QueryGetUserByAttribute = model.DBQuery{
		ID: "SAQ-USER_MGT-07",
		Query: "SELECT U.USER_ID, U.USERNAME, U.ATTRIBUTES FROM SA_USER U " +
			"INNER JOIN SA_USER_ATTRIBUTE A ON U.USER_ID = A.USER_ID " +
			"WHERE A.ATTR_NAME = $1 AND A.ATTR_VALUE = $2",
	}
	// QueryGetUserAttributes is the query to list the values of a multi-valued attribute for a user.
	QueryGetUserAttributes = model.DBQuery{
		ID:    "SAQ-USER_MGT-08",
		Query: "SELECT ATTR_VALUE FROM SA_USER_ATTRIBUTE WHERE USER_ID = $1 AND ATTR_NAME = $2",
	}
	// QueryGetUserAttributesByPrefix is the query to list attribute values with a given prefix for a user.
	QueryGetUserAttributesByPrefix = model.DBQuery{
		ID:    "SAQ-USER_MGT-09",
		Query: "SELECT ATTR_VALUE FROM SA_USER_ATTRIBUTE WHERE USER_ID = $1 AND ATTR_NAME = $2 AND ATTR_VALUE LIKE $3",
	}
)

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
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/stepauth/internal/system/database/client"
	dbmodel "github.com/asgardeo/stepauth/internal/system/database/model"
)

type UserStoreTestSuite struct {
	suite.Suite
	mock  sqlmock.Sqlmock
	store UserStoreInterface
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreTestSuite))
}

func (suite *UserStoreTestSuite) SetupTest() {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(suite.T(), err)

	suite.mock = mock
	suite.store = NewUserStoreWithClient(client.NewDBClient(dbmodel.NewDB(db), "postgres"))
}

func (suite *UserStoreTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *UserStoreTestSuite) TestCreateUser() {
	suite.mock.ExpectExec(QueryCreateUser.Query).
		WithArgs("u1", "alice", "hash", `{"mobile":"+15550001111"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := suite.store.CreateUser(User{
		ID:         "u1",
		Username:   "alice",
		Attributes: json.RawMessage(`{"mobile":"+15550001111"}`),
	}, "hash")
	assert.NoError(suite.T(), err)
}

func (suite *UserStoreTestSuite) TestGetUserByUsername() {
	rows := sqlmock.NewRows([]string{"USER_ID", "USERNAME", "ATTRIBUTES"}).
		AddRow("u1", "alice", `{"mobile":"+15550001111"}`)
	suite.mock.ExpectQuery(QueryGetUserByUsername.Query).WithArgs("alice").WillReturnRows(rows)

	u, err := suite.store.GetUserByUsername("alice")
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), u)
	assert.Equal(suite.T(), "u1", u.ID)
	assert.Equal(suite.T(), "alice", u.Username)
	assert.JSONEq(suite.T(), `{"mobile":"+15550001111"}`, string(u.Attributes))
}

func (suite *UserStoreTestSuite) TestGetUserByUsernameNotFound() {
	rows := sqlmock.NewRows([]string{"USER_ID", "USERNAME", "ATTRIBUTES"})
	suite.mock.ExpectQuery(QueryGetUserByUsername.Query).WithArgs("ghost").WillReturnRows(rows)

	u, err := suite.store.GetUserByUsername("ghost")
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), u)
}

func (suite *UserStoreTestSuite) TestGetUserCredential() {
	rows := sqlmock.NewRows([]string{"USER_ID", "CREDENTIAL"}).AddRow("u1", "hash")
	suite.mock.ExpectQuery(QueryGetUserCredential.Query).WithArgs("alice").WillReturnRows(rows)

	userID, credential, err := suite.store.GetUserCredential("alice")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "u1", userID)
	assert.Equal(suite.T(), "hash", credential)
}

func (suite *UserStoreTestSuite) TestAddUserAttribute() {
	suite.mock.ExpectExec(QueryAddUserAttribute.Query).
		WithArgs("u1", "externalUid", "oxpush:XYZ").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := suite.store.AddUserAttribute("u1", "externalUid", "oxpush:XYZ")
	assert.NoError(suite.T(), err)
}

func (suite *UserStoreTestSuite) TestRemoveUserAttribute() {
	suite.mock.ExpectExec(QueryRemoveUserAttribute.Query).
		WithArgs("u1", "externalUid", "oxpush:XYZ").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := suite.store.RemoveUserAttribute("u1", "externalUid", "oxpush:XYZ")
	assert.NoError(suite.T(), err)
}

func (suite *UserStoreTestSuite) TestGetUsersByAttribute() {
	rows := sqlmock.NewRows([]string{"USER_ID", "USERNAME", "ATTRIBUTES"}).
		AddRow("u2", "bob", "{}")
	suite.mock.ExpectQuery(QueryGetUserByAttribute.Query).
		WithArgs("externalUid", "oxpush:XYZ").WillReturnRows(rows)

	users, err := suite.store.GetUsersByAttribute("externalUid", "oxpush:XYZ")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), users, 1)
	assert.Equal(suite.T(), "bob", users[0].Username)
}

func (suite *UserStoreTestSuite) TestGetUserAttributesByPrefix() {
	rows := sqlmock.NewRows([]string{"ATTR_VALUE"}).AddRow("oxpush:XYZ")
	suite.mock.ExpectQuery(QueryGetUserAttributesByPrefix.Query).
		WithArgs("u1", "externalUid", "oxpush:%").WillReturnRows(rows)

	values, err := suite.store.GetUserAttributesByPrefix("u1", "externalUid", "oxpush:")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"oxpush:XYZ"}, values)
}

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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	authnmodel "github.com/asgardeo/stepauth/internal/authn/model"
	"github.com/asgardeo/stepauth/internal/session"
	"github.com/asgardeo/stepauth/internal/system/config"
)

type FlowHandlerTestSuite struct {
	suite.Suite
	sessions   session.SessionStoreInterface
	directory  *fakeDirectory
	challenges *fakeChallenges
	mux        *http.ServeMux
}

func TestFlowHandlerSuite(t *testing.T) {
	suite.Run(t, new(FlowHandlerTestSuite))
}

func (suite *FlowHandlerTestSuite) SetupTest() {
	config.ResetStepAuthRuntime()
	err := config.InitializeStepAuthRuntime("/tmp", &config.Config{
		Assertion: config.AssertionConfig{
			Issuer:                "stepauth-test",
			SigningKey:            "test-signing-key",
			ValidityPeriodSeconds: 300,
		},
	})
	assert.NoError(suite.T(), err)

	suite.sessions = session.NewSessionStore(time.Minute)
	suite.directory = &fakeDirectory{enrolled: true, externalUID: "device-1"}
	suite.challenges = newFakeChallenges()

	creds := &fakeCredentials{
		authUser: &authnmodel.AuthenticatedUser{
			IsAuthenticated: true,
			UserID:          "u-alice",
			Username:        "alice",
		},
	}
	handler := &FlowHandler{
		engine: NewFlowEngine(suite.sessions, suite.directory, creds,
			suite.challenges, "oxpush"),
		sessions:   suite.sessions,
		challenges: suite.challenges,
	}

	suite.mux = http.NewServeMux()
	suite.mux.HandleFunc("POST /flow/authenticate", handler.HandleAuthenticateRequest)
	suite.mux.HandleFunc("POST /flow/callback/{requestID}", handler.HandleCallbackRequest)
	suite.mux.HandleFunc("POST /flow/logout", handler.HandleLogoutRequest)
}

func (suite *FlowHandlerTestSuite) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	suite.mux.ServeHTTP(recorder, req)
	return recorder
}

func (suite *FlowHandlerTestSuite) TestAuthenticateStartsSession() {
	recorder := suite.post("/flow/authenticate",
		`{"inputs":{"username":"alice","password":"secret"}}`)
	assert.Equal(suite.T(), http.StatusOK, recorder.Code)

	var result StepResult
	assert.NoError(suite.T(), json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.NotEmpty(suite.T(), result.SessionID)
	assert.True(suite.T(), result.Success)
	assert.Equal(suite.T(), 2, result.CurrentStep)
	assert.Equal(suite.T(), session.SessionStateInProgress, result.State)
	assert.Equal(suite.T(), pageVerify, result.Page)

	// Rendering the verify step issues the challenge.
	assert.Equal(suite.T(), 1, suite.challenges.issueCount)
}

func (suite *FlowHandlerTestSuite) TestAuthenticateUnknownSession() {
	recorder := suite.post("/flow/authenticate", `{"sessionId":"missing"}`)
	assert.Equal(suite.T(), http.StatusNotFound, recorder.Code)
	assert.Contains(suite.T(), recorder.Body.String(), ErrorSessionNotFound.Code)
}

func (suite *FlowHandlerTestSuite) TestAuthenticateMalformedBody() {
	recorder := suite.post("/flow/authenticate", `{not json`)
	assert.Equal(suite.T(), http.StatusBadRequest, recorder.Code)
	assert.Contains(suite.T(), recorder.Body.String(), ErrorInvalidRequest.Code)
}

func (suite *FlowHandlerTestSuite) TestAuthenticateFailedSessionForbidden() {
	sess := suite.sessions.CreateSession("u-alice", "alice", totalStepsEnrolled)
	sess.State = session.SessionStateFailed
	suite.sessions.UpdateSession(sess)

	recorder := suite.post("/flow/authenticate", `{"sessionId":"`+sess.SessionID+`"}`)
	assert.Equal(suite.T(), http.StatusForbidden, recorder.Code)
	assert.Contains(suite.T(), recorder.Body.String(), ErrorFlowFailed.Code)
}

func (suite *FlowHandlerTestSuite) TestCallback() {
	recorder := suite.post("/flow/callback/r1", `{"status":"approved","externalRef":"device-9"}`)
	assert.Equal(suite.T(), http.StatusNoContent, recorder.Code)
}

func (suite *FlowHandlerTestSuite) TestLogout() {
	sess := suite.sessions.CreateSession("u-alice", "alice", totalStepsEnrolled)

	recorder := suite.post("/flow/logout", `{"sessionId":"`+sess.SessionID+`"}`)
	assert.Equal(suite.T(), http.StatusNoContent, recorder.Code)

	_, found := suite.sessions.GetSession(sess.SessionID)
	assert.False(suite.T(), found)
}

func (suite *FlowHandlerTestSuite) TestLogoutMissingSessionID() {
	recorder := suite.post("/flow/logout", `{}`)
	assert.Equal(suite.T(), http.StatusBadRequest, recorder.Code)
}

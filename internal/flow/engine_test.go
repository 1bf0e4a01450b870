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
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	authnmodel "github.com/asgardeo/stepauth/internal/authn/model"
	chalmodel "github.com/asgardeo/stepauth/internal/challenge/model"
	"github.com/asgardeo/stepauth/internal/session"
	"github.com/asgardeo/stepauth/internal/system/config"
	"github.com/asgardeo/stepauth/internal/system/error/serviceerror"
	"github.com/asgardeo/stepauth/internal/user"
)

// fakeCredentials scripts the outcome of the primary credential validation.
type fakeCredentials struct {
	authUser *authnmodel.AuthenticatedUser
	authErr  *serviceerror.ServiceError
}

func (c *fakeCredentials) Authenticate(_, _ string) (*authnmodel.AuthenticatedUser,
	*serviceerror.ServiceError) {
	if c.authErr != nil {
		return nil, c.authErr
	}
	return c.authUser, nil
}

// fakeDirectory scripts the directory responses the engine depends on.
type fakeDirectory struct {
	user.UserServiceInterface
	enrolled      bool
	externalUID   string
	addEnrollErr  *serviceerror.ServiceError
	addEnrollUIDs []string
}

func (d *fakeDirectory) GetUser(userID string) (*user.User, *serviceerror.ServiceError) {
	return &user.User{
		ID:         userID,
		Username:   "alice",
		Attributes: json.RawMessage(`{"mobile":"+15550001111"}`),
	}, nil
}

func (d *fakeDirectory) GetEnrollment(_, providerName string) (*user.Enrollment,
	*serviceerror.ServiceError) {
	if !d.enrolled {
		return nil, nil
	}
	return &user.Enrollment{UserID: "u-alice", Provider: providerName,
		ExternalUID: d.externalUID}, nil
}

func (d *fakeDirectory) AddEnrollment(_, _, externalUID string) *serviceerror.ServiceError {
	if d.addEnrollErr != nil {
		return d.addEnrollErr
	}
	d.addEnrollUIDs = append(d.addEnrollUIDs, externalUID)
	d.enrolled = true
	d.externalUID = externalUID
	return nil
}

// fakeChallenges scripts challenge issuance and resolution. Request IDs are
// assigned sequentially (r1, r2, ...).
type fakeChallenges struct {
	issued      map[string]*chalmodel.ChallengeRequest
	issueCount  int
	issuedKinds []chalmodel.ChallengeKind
	resolutions map[string]*chalmodel.Resolution
	verifyErr   *serviceerror.ServiceError
	verifyCodes []string
	abandoned   []string
}

func newFakeChallenges() *fakeChallenges {
	return &fakeChallenges{
		issued:      make(map[string]*chalmodel.ChallengeRequest),
		resolutions: make(map[string]*chalmodel.Resolution),
	}
}

func (f *fakeChallenges) IssueChallenge(_ context.Context, providerName string,
	kind chalmodel.ChallengeKind, subject chalmodel.Subject,
	externalUID string) (*chalmodel.ChallengeRequest, *serviceerror.ServiceError) {
	f.issueCount++
	f.issuedKinds = append(f.issuedKinds, kind)
	challenge := &chalmodel.ChallengeRequest{
		RequestID:      fmt.Sprintf("r%d", f.issueCount),
		Kind:           kind,
		Provider:       providerName,
		Subject:        subject,
		DeviceRef:      externalUID,
		IssuedAt:       time.Now(),
		TimeoutSeconds: 60,
		Status:         chalmodel.ChallengeStatusPending,
	}
	f.issued[challenge.RequestID] = challenge
	return challenge, nil
}

func (f *fakeChallenges) AwaitResolution(_ context.Context,
	requestID string) (*chalmodel.Resolution, *serviceerror.ServiceError) {
	if resolution, ok := f.resolutions[requestID]; ok {
		return resolution, nil
	}
	return nil, &ErrorInternalServerError
}

func (f *fakeChallenges) GetChallenge(requestID string) (*chalmodel.ChallengeRequest, bool) {
	challenge, ok := f.issued[requestID]
	return challenge, ok
}

func (f *fakeChallenges) VerifyCode(_, code string) (*chalmodel.Resolution,
	*serviceerror.ServiceError) {
	f.verifyCodes = append(f.verifyCodes, code)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &chalmodel.Resolution{Status: chalmodel.ChallengeStatusApproved}, nil
}

func (f *fakeChallenges) ResolveCallback(_ string, _ chalmodel.ChallengeStatus,
	_ string) *serviceerror.ServiceError {
	return nil
}

func (f *fakeChallenges) AbandonChallenge(requestID string) {
	f.abandoned = append(f.abandoned, requestID)
	delete(f.issued, requestID)
}

type FlowEngineTestSuite struct {
	suite.Suite
	sessions   session.SessionStoreInterface
	directory  *fakeDirectory
	creds      *fakeCredentials
	challenges *fakeChallenges
	engine     FlowEngineInterface
}

func TestFlowEngineSuite(t *testing.T) {
	suite.Run(t, new(FlowEngineTestSuite))
}

func (suite *FlowEngineTestSuite) SetupTest() {
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
	suite.directory = &fakeDirectory{}
	suite.creds = &fakeCredentials{
		authUser: &authnmodel.AuthenticatedUser{
			IsAuthenticated: true,
			UserID:          "u-alice",
			Username:        "alice",
		},
	}
	suite.challenges = newFakeChallenges()
	suite.engine = NewFlowEngine(suite.sessions, suite.directory, suite.creds,
		suite.challenges, "oxpush")
}

func (suite *FlowEngineTestSuite) startSession() *session.AuthSession {
	return suite.engine.Init()
}

func (suite *FlowEngineTestSuite) passCredentialStep(sess *session.AuthSession) *StepResult {
	result, svcErr := suite.engine.Authenticate(context.Background(), sess.SessionID,
		map[string]string{ParamUsername: "alice", ParamPassword: "secret"}, 1)
	assert.Nil(suite.T(), svcErr)
	assert.True(suite.T(), result.Success)
	return result
}

func (suite *FlowEngineTestSuite) TestCredentialStepWrongPasswordStaysAtStepOne() {
	suite.creds.authErr = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "AUTH-CRED-1002"}
	sess := suite.startSession()

	result, svcErr := suite.engine.Authenticate(context.Background(), sess.SessionID,
		map[string]string{ParamUsername: "alice", ParamPassword: "wrongpass"}, 1)
	assert.Nil(suite.T(), svcErr)
	assert.False(suite.T(), result.Success)
	assert.Equal(suite.T(), 1, result.CurrentStep)
	assert.Equal(suite.T(), session.SessionStateInProgress, result.State)
	assert.Equal(suite.T(), messageInvalidCredentials, result.Message)
}

func (suite *FlowEngineTestSuite) TestStepsExecuteInOrder() {
	sess := suite.startSession()

	_, svcErr := suite.engine.Authenticate(context.Background(), sess.SessionID, nil, 2)
	assert.NotNil(suite.T(), svcErr)
	assert.Equal(suite.T(), ErrorStateMismatch.Code, svcErr.Code)

	loaded, found := suite.sessions.GetSession(sess.SessionID)
	assert.True(suite.T(), found)
	assert.Equal(suite.T(), 1, loaded.CurrentStep)
}

func (suite *FlowEngineTestSuite) TestEnrolledUserCompletesTwoStepFlow() {
	suite.directory.enrolled = true
	suite.directory.externalUID = "device-1"
	sess := suite.startSession()

	result := suite.passCredentialStep(sess)
	assert.Equal(suite.T(), 2, result.CurrentStep)
	assert.Equal(suite.T(), totalStepsEnrolled, result.TotalSteps)
	assert.Equal(suite.T(), pageVerify, result.Page)

	prepared, svcErr := suite.engine.PrepareForStep(context.Background(), sess.SessionID, 2)
	assert.Nil(suite.T(), svcErr)
	assert.True(suite.T(), prepared)
	assert.Equal(suite.T(), []chalmodel.ChallengeKind{chalmodel.ChallengeKindAuthenticate},
		suite.challenges.issuedKinds)

	suite.challenges.resolutions["r1"] = &chalmodel.Resolution{
		RequestID: "r1", Status: chalmodel.ChallengeStatusApproved}

	result, svcErr = suite.engine.Authenticate(context.Background(), sess.SessionID, nil, 2)
	assert.Nil(suite.T(), svcErr)
	assert.True(suite.T(), result.Success)
	assert.Equal(suite.T(), session.SessionStateAuthenticated, result.State)
	assert.NotEmpty(suite.T(), result.Assertion)
}

func (suite *FlowEngineTestSuite) TestWorkingParametersPrunedOnAdvance() {
	suite.directory.enrolled = true
	sess := suite.startSession()
	sess.SetWorkingParameter("stale", "value")
	suite.sessions.UpdateSession(sess)

	suite.passCredentialStep(sess)

	loaded, found := suite.sessions.GetSession(sess.SessionID)
	assert.True(suite.T(), found)

	_, ok := loaded.GetWorkingParameter("stale")
	assert.False(suite.T(), ok)

	providerName, ok := loaded.GetWorkingParameter(paramProviderName)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "oxpush", providerName)
}

func (suite *FlowEngineTestSuite) TestUnenrolledUserCompletesPairingFlow() {
	sess := suite.startSession()

	result := suite.passCredentialStep(sess)
	assert.Equal(suite.T(), 2, result.CurrentStep)
	assert.Equal(suite.T(), totalStepsNotEnrolled, result.TotalSteps)
	assert.Equal(suite.T(), pagePair, result.Page)

	prepared, svcErr := suite.engine.PrepareForStep(context.Background(), sess.SessionID, 2)
	assert.Nil(suite.T(), svcErr)
	assert.True(suite.T(), prepared)
	assert.Equal(suite.T(), chalmodel.ChallengeKindPair, suite.challenges.issuedKinds[0])

	suite.challenges.resolutions["r1"] = &chalmodel.Resolution{
		RequestID: "r1", Status: chalmodel.ChallengeStatusApproved, ExternalRef: "device-1"}

	result, svcErr = suite.engine.Authenticate(context.Background(), sess.SessionID, nil, 2)
	assert.Nil(suite.T(), svcErr)
	assert.True(suite.T(), result.Success)
	assert.Equal(suite.T(), 3, result.CurrentStep)
	assert.Equal(suite.T(), []string{"device-1"}, suite.directory.addEnrollUIDs)

	prepared, svcErr = suite.engine.PrepareForStep(context.Background(), sess.SessionID, 3)
	assert.Nil(suite.T(), svcErr)
	assert.True(suite.T(), prepared)

	suite.challenges.resolutions["r2"] = &chalmodel.Resolution{
		RequestID: "r2", Status: chalmodel.ChallengeStatusApproved}

	result, svcErr = suite.engine.Authenticate(context.Background(), sess.SessionID, nil, 3)
	assert.Nil(suite.T(), svcErr)
	assert.True(suite.T(), result.Success)
	assert.Equal(suite.T(), session.SessionStateAuthenticated, result.State)
	assert.NotEmpty(suite.T(), result.Assertion)
}

func (suite *FlowEngineTestSuite) TestDeclinedChallengeFailsStepNotSession() {
	suite.directory.enrolled = true
	sess := suite.startSession()
	suite.passCredentialStep(sess)

	prepared, svcErr := suite.engine.PrepareForStep(context.Background(), sess.SessionID, 2)
	assert.Nil(suite.T(), svcErr)
	assert.True(suite.T(), prepared)

	suite.challenges.resolutions["r1"] = &chalmodel.Resolution{
		RequestID: "r1", Status: chalmodel.ChallengeStatusDeclined}

	result, svcErr := suite.engine.Authenticate(context.Background(), sess.SessionID, nil, 2)
	assert.Nil(suite.T(), svcErr)
	assert.False(suite.T(), result.Success)
	assert.Equal(suite.T(), 2, result.CurrentStep)
	assert.Equal(suite.T(), session.SessionStateInProgress, result.State)
	assert.Equal(suite.T(), messageDeclined, result.Message)
}

func (suite *FlowEngineTestSuite) TestExpiredChallengeAllowsRetry() {
	suite.directory.enrolled = true
	sess := suite.startSession()
	suite.passCredentialStep(sess)

	_, svcErr := suite.engine.PrepareForStep(context.Background(), sess.SessionID, 2)
	assert.Nil(suite.T(), svcErr)

	suite.challenges.resolutions["r1"] = &chalmodel.Resolution{
		RequestID: "r1", Status: chalmodel.ChallengeStatusExpired}

	result, svcErr := suite.engine.Authenticate(context.Background(), sess.SessionID, nil, 2)
	assert.Nil(suite.T(), svcErr)
	assert.False(suite.T(), result.Success)
	assert.Equal(suite.T(), messageExpired, result.Message)
	assert.Equal(suite.T(), session.SessionStateInProgress, result.State)
}

func (suite *FlowEngineTestSuite) TestDuplicateEnrollmentFailsSession() {
	sess := suite.startSession()
	suite.passCredentialStep(sess)

	_, svcErr := suite.engine.PrepareForStep(context.Background(), sess.SessionID, 2)
	assert.Nil(suite.T(), svcErr)

	suite.challenges.resolutions["r1"] = &chalmodel.Resolution{
		RequestID: "r1", Status: chalmodel.ChallengeStatusApproved, ExternalRef: "XYZ"}
	suite.directory.addEnrollErr = &user.ErrorDuplicateEnrollment

	result, svcErr := suite.engine.Authenticate(context.Background(), sess.SessionID, nil, 2)
	assert.Nil(suite.T(), svcErr)
	assert.False(suite.T(), result.Success)
	assert.Equal(suite.T(), session.SessionStateFailed, result.State)

	// A failed session cannot continue.
	_, svcErr = suite.engine.Authenticate(context.Background(), sess.SessionID, nil, 2)
	assert.NotNil(suite.T(), svcErr)
	assert.Equal(suite.T(), ErrorFlowFailed.Code, svcErr.Code)
}

func (suite *FlowEngineTestSuite) TestPrepareReusesPendingChallenge() {
	suite.directory.enrolled = true
	sess := suite.startSession()
	suite.passCredentialStep(sess)

	for i := 0; i < 2; i++ {
		prepared, svcErr := suite.engine.PrepareForStep(context.Background(), sess.SessionID, 2)
		assert.Nil(suite.T(), svcErr)
		assert.True(suite.T(), prepared)
	}

	// The outstanding pending challenge is reused, no duplicate notification.
	assert.Equal(suite.T(), 1, suite.challenges.issueCount)
}

func (suite *FlowEngineTestSuite) TestVerifyStepWrongCode() {
	suite.directory.enrolled = true
	sess := suite.startSession()
	suite.passCredentialStep(sess)

	_, svcErr := suite.engine.PrepareForStep(context.Background(), sess.SessionID, 2)
	assert.Nil(suite.T(), svcErr)

	suite.challenges.verifyErr = &serviceerror.ServiceError{
		Type: serviceerror.ClientErrorType, Code: "CHAL-1002"}

	result, svcErr := suite.engine.Authenticate(context.Background(), sess.SessionID,
		map[string]string{ParamCode: "000000"}, 2)
	assert.Nil(suite.T(), svcErr)
	assert.False(suite.T(), result.Success)
	assert.Equal(suite.T(), messageWrongCode, result.Message)
	assert.Equal(suite.T(), 2, result.CurrentStep)
	assert.Equal(suite.T(), []string{"000000"}, suite.challenges.verifyCodes)
}

func (suite *FlowEngineTestSuite) TestGetCountAuthenticationSteps() {
	sess := suite.startSession()
	suite.passCredentialStep(sess)
	assert.Equal(suite.T(), totalStepsNotEnrolled,
		suite.engine.GetCountAuthenticationSteps(sess.SessionID))

	suite.directory.enrolled = true
	other := suite.startSession()
	suite.passCredentialStep(other)
	assert.Equal(suite.T(), totalStepsEnrolled,
		suite.engine.GetCountAuthenticationSteps(other.SessionID))
}

func (suite *FlowEngineTestSuite) TestGetExtraParametersForStep() {
	assert.Nil(suite.T(), suite.engine.GetExtraParametersForStep(1, 2))
	assert.Equal(suite.T(), []string{paramProviderName, paramChallengeRequestID},
		suite.engine.GetExtraParametersForStep(2, 2))
	assert.Equal(suite.T(), []string{paramProviderName, paramPairingRequestID},
		suite.engine.GetExtraParametersForStep(2, 3))
	assert.Equal(suite.T(),
		[]string{paramProviderName, paramPairingRequestID, paramChallengeRequestID},
		suite.engine.GetExtraParametersForStep(3, 3))
}

func (suite *FlowEngineTestSuite) TestGetPageForStep() {
	assert.Equal(suite.T(), pageLogin, suite.engine.GetPageForStep(1, 2))
	assert.Equal(suite.T(), pageVerify, suite.engine.GetPageForStep(2, 2))
	assert.Equal(suite.T(), pagePair, suite.engine.GetPageForStep(2, 3))
	assert.Equal(suite.T(), pageVerify, suite.engine.GetPageForStep(3, 3))
}

func (suite *FlowEngineTestSuite) TestLogout() {
	sess := suite.startSession()
	assert.True(suite.T(), suite.engine.Logout(sess.SessionID))

	_, found := suite.sessions.GetSession(sess.SessionID)
	assert.False(suite.T(), found)
}

func (suite *FlowEngineTestSuite) TestLogoutAbandonsPendingChallenge() {
	suite.directory.enrolled = true
	sess := suite.startSession()
	suite.passCredentialStep(sess)

	_, svcErr := suite.engine.PrepareForStep(context.Background(), sess.SessionID, 2)
	assert.Nil(suite.T(), svcErr)

	assert.True(suite.T(), suite.engine.Logout(sess.SessionID))
	assert.Equal(suite.T(), []string{"r1"}, suite.challenges.abandoned)
}

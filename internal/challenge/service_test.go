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

package challenge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/stepauth/internal/challenge/model"
	"github.com/asgardeo/stepauth/internal/challenge/store"
	"github.com/asgardeo/stepauth/internal/provider"
	"github.com/asgardeo/stepauth/internal/system/utils"
)

// fakeProvider is a scripted second-factor provider. CheckStatus walks the
// configured status sequence, repeating the last entry once exhausted.
type fakeProvider struct {
	mu             sync.Mutex
	name           string
	timeoutSeconds int
	statuses       []model.ChallengeStatus
	statusErr      error
	checkCount     int
	initiateCount  int
}

func (p *fakeProvider) GetName() string        { return p.name }
func (p *fakeProvider) GetDisplayName() string { return p.name }

func (p *fakeProvider) newChallenge(kind model.ChallengeKind,
	subject model.Subject, deviceRef string) *model.ChallengeRequest {
	return &model.ChallengeRequest{
		RequestID:      utils.GenerateUUID(),
		Kind:           kind,
		Provider:       p.name,
		Subject:        subject,
		DeviceRef:      deviceRef,
		IssuedAt:       time.Now(),
		TimeoutSeconds: p.timeoutSeconds,
		Status:         model.ChallengeStatusPending,
	}
}

func (p *fakeProvider) InitiatePairing(_ context.Context,
	subject model.Subject) (*model.ChallengeRequest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initiateCount++
	return p.newChallenge(model.ChallengeKindPair, subject, ""), nil
}

func (p *fakeProvider) InitiateAuthentication(_ context.Context, subject model.Subject,
	externalUID string) (*model.ChallengeRequest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initiateCount++
	return p.newChallenge(model.ChallengeKindAuthenticate, subject, externalUID), nil
}

func (p *fakeProvider) CheckStatus(_ context.Context, _ string) (model.ChallengeStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.statusErr != nil {
		return "", p.statusErr
	}
	index := p.checkCount
	p.checkCount++
	if index >= len(p.statuses) {
		index = len(p.statuses) - 1
	}
	return p.statuses[index], nil
}

type fakeProviderService struct {
	prov provider.SecondFactorProviderInterface
}

func (s *fakeProviderService) GetProvider(string) (provider.SecondFactorProviderInterface, error) {
	return s.prov, nil
}

type ChallengeServiceTestSuite struct {
	suite.Suite
	prov      *fakeProvider
	providers provider.ProviderServiceInterface
	store     store.ChallengeStoreInterface
	service   ChallengeServiceInterface
	subject   model.Subject
}

func TestChallengeServiceSuite(t *testing.T) {
	suite.Run(t, new(ChallengeServiceTestSuite))
}

func (suite *ChallengeServiceTestSuite) SetupTest() {
	suite.prov = &fakeProvider{
		name:           "oxpush",
		timeoutSeconds: 60,
		statuses:       []model.ChallengeStatus{model.ChallengeStatusPending},
	}
	suite.providers = &fakeProviderService{prov: suite.prov}
	suite.store = store.NewChallengeStore()
	suite.service = NewChallengeService(suite.providers, suite.store,
		NewPollingStrategy(suite.providers, 50*time.Millisecond))
	suite.subject = model.Subject{UserID: "u1", Username: "alice"}
}

func (suite *ChallengeServiceTestSuite) issue(kind model.ChallengeKind) *model.ChallengeRequest {
	challenge, svcErr := suite.service.IssueChallenge(context.Background(), "oxpush", kind,
		suite.subject, "dev-1")
	assert.Nil(suite.T(), svcErr)
	assert.NotNil(suite.T(), challenge)
	return challenge
}

func (suite *ChallengeServiceTestSuite) TestIssueChallenge() {
	challenge := suite.issue(model.ChallengeKindAuthenticate)

	assert.Equal(suite.T(), model.ChallengeStatusPending, challenge.Status)
	assert.Equal(suite.T(), 1, suite.prov.initiateCount)

	stored, found := suite.service.GetChallenge(challenge.RequestID)
	assert.True(suite.T(), found)
	assert.Equal(suite.T(), challenge.RequestID, stored.RequestID)
}

func (suite *ChallengeServiceTestSuite) TestIssueChallengeReusesPending() {
	first := suite.issue(model.ChallengeKindAuthenticate)
	second := suite.issue(model.ChallengeKindAuthenticate)

	assert.Equal(suite.T(), first.RequestID, second.RequestID)
	assert.Equal(suite.T(), 1, suite.prov.initiateCount)
}

func (suite *ChallengeServiceTestSuite) TestAwaitResolutionApprovedAfterPolls() {
	suite.prov.statuses = []model.ChallengeStatus{
		model.ChallengeStatusPending,
		model.ChallengeStatusPending,
		model.ChallengeStatusApproved,
	}
	challenge := suite.issue(model.ChallengeKindAuthenticate)

	resolution, svcErr := suite.service.AwaitResolution(context.Background(), challenge.RequestID)
	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), model.ChallengeStatusApproved, resolution.Status)
	assert.Equal(suite.T(), 3, suite.prov.checkCount)
}

func (suite *ChallengeServiceTestSuite) TestAwaitResolutionDeclinedImmediately() {
	suite.prov.statuses = []model.ChallengeStatus{model.ChallengeStatusDeclined}
	challenge := suite.issue(model.ChallengeKindAuthenticate)

	start := time.Now()
	resolution, svcErr := suite.service.AwaitResolution(context.Background(), challenge.RequestID)
	elapsed := time.Since(start)

	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), model.ChallengeStatusDeclined, resolution.Status)
	// Declined on the first check, no further polling.
	assert.Equal(suite.T(), 1, suite.prov.checkCount)
	assert.Less(suite.T(), elapsed, 50*time.Millisecond)
}

func (suite *ChallengeServiceTestSuite) TestAwaitResolutionTimesOutAtDeadline() {
	suite.prov.timeoutSeconds = 1
	challenge := suite.issue(model.ChallengeKindAuthenticate)

	start := time.Now()
	resolution, svcErr := suite.service.AwaitResolution(context.Background(), challenge.RequestID)
	elapsed := time.Since(start)

	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), model.ChallengeStatusExpired, resolution.Status)
	assert.GreaterOrEqual(suite.T(), elapsed, 900*time.Millisecond)
	assert.Less(suite.T(), elapsed, 3*time.Second)
}

func (suite *ChallengeServiceTestSuite) TestAwaitResolutionTransportErrorAborts() {
	challenge := suite.issue(model.ChallengeKindAuthenticate)
	suite.prov.statusErr = provider.ErrProviderUnavailable

	_, svcErr := suite.service.AwaitResolution(context.Background(), challenge.RequestID)
	assert.NotNil(suite.T(), svcErr)
	assert.Equal(suite.T(), ErrorProviderUnavailable.Code, svcErr.Code)
}

func (suite *ChallengeServiceTestSuite) TestAwaitResolutionUnknownChallenge() {
	_, svcErr := suite.service.AwaitResolution(context.Background(), "missing")
	assert.NotNil(suite.T(), svcErr)
	assert.Equal(suite.T(), ErrorChallengeNotFound.Code, svcErr.Code)
}

func (suite *ChallengeServiceTestSuite) TestVerifyCode() {
	challenge := &model.ChallengeRequest{
		RequestID:      "r-otp",
		Kind:           model.ChallengeKindAuthenticate,
		Provider:       "smsotp",
		Subject:        suite.subject,
		DeviceRef:      "+15550001111",
		Code:           "123456",
		IssuedAt:       time.Now(),
		TimeoutSeconds: 60,
		Status:         model.ChallengeStatusPending,
	}
	suite.store.Add(challenge)

	// A mismatch leaves the challenge pending for retry.
	_, svcErr := suite.service.VerifyCode("r-otp", "000000")
	assert.NotNil(suite.T(), svcErr)
	assert.Equal(suite.T(), ErrorInvalidCode.Code, svcErr.Code)

	stored, found := suite.service.GetChallenge("r-otp")
	assert.True(suite.T(), found)
	assert.Equal(suite.T(), model.ChallengeStatusPending, stored.Status)

	resolution, svcErr := suite.service.VerifyCode("r-otp", "123456")
	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), model.ChallengeStatusApproved, resolution.Status)
}

func (suite *ChallengeServiceTestSuite) TestVerifyCodeExpired() {
	challenge := &model.ChallengeRequest{
		RequestID:      "r-otp",
		Kind:           model.ChallengeKindAuthenticate,
		Provider:       "smsotp",
		Subject:        suite.subject,
		Code:           "123456",
		IssuedAt:       time.Now().Add(-2 * time.Minute),
		TimeoutSeconds: 60,
		Status:         model.ChallengeStatusPending,
	}
	suite.store.Add(challenge)

	_, svcErr := suite.service.VerifyCode("r-otp", "123456")
	assert.NotNil(suite.T(), svcErr)
	assert.Equal(suite.T(), ErrorChallengeExpired.Code, svcErr.Code)
}

func (suite *ChallengeServiceTestSuite) TestAbandonChallenge() {
	challenge := suite.issue(model.ChallengeKindAuthenticate)

	suite.service.AbandonChallenge(challenge.RequestID)

	_, found := suite.service.GetChallenge(challenge.RequestID)
	assert.False(suite.T(), found)
}

func (suite *ChallengeServiceTestSuite) TestResolveCallbackRejectsNonTerminal() {
	challenge := suite.issue(model.ChallengeKindAuthenticate)

	svcErr := suite.service.ResolveCallback(challenge.RequestID, model.ChallengeStatusPending, "")
	assert.NotNil(suite.T(), svcErr)
	assert.Equal(suite.T(), ErrorInvalidStatus.Code, svcErr.Code)
}

func (suite *ChallengeServiceTestSuite) TestResolveCallbackUnknownChallenge() {
	svcErr := suite.service.ResolveCallback("missing", model.ChallengeStatusApproved, "")
	assert.NotNil(suite.T(), svcErr)
	assert.Equal(suite.T(), ErrorChallengeNotFound.Code, svcErr.Code)
}

func (suite *ChallengeServiceTestSuite) TestCallbackStrategyResolvesFromCallback() {
	callbackService := NewChallengeService(suite.providers, suite.store,
		NewCallbackStrategy(suite.store))

	challenge, svcErr := callbackService.IssueChallenge(context.Background(), "oxpush",
		model.ChallengeKindPair, suite.subject, "")
	assert.Nil(suite.T(), svcErr)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = callbackService.ResolveCallback(challenge.RequestID,
			model.ChallengeStatusApproved, "device-9")
	}()

	resolution, svcErr := callbackService.AwaitResolution(context.Background(), challenge.RequestID)
	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), model.ChallengeStatusApproved, resolution.Status)
	assert.Equal(suite.T(), "device-9", resolution.ExternalRef)
}

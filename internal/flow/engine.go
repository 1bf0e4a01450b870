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

// Package flow implements the multi-step authentication state machine.
package flow

import (
	"context"
	"sync"
	"time"

	"github.com/asgardeo/stepauth/internal/authn/credentials"
	"github.com/asgardeo/stepauth/internal/challenge"
	"github.com/asgardeo/stepauth/internal/challenge/model"
	"github.com/asgardeo/stepauth/internal/session"
	"github.com/asgardeo/stepauth/internal/system/config"
	"github.com/asgardeo/stepauth/internal/system/error/serviceerror"
	"github.com/asgardeo/stepauth/internal/system/log"
	"github.com/asgardeo/stepauth/internal/system/metrics"
	"github.com/asgardeo/stepauth/internal/user"
)

const loggerComponentName = "FlowEngine"

// StepResult is the outcome of executing one step of the flow.
type StepResult struct {
	SessionID   string               `json:"sessionId"`
	Success     bool                 `json:"success"`
	State       session.SessionState `json:"state"`
	CurrentStep int                  `json:"currentStep"`
	TotalSteps  int                  `json:"totalSteps"`
	Page        string               `json:"page,omitempty"`
	Assertion   string               `json:"assertion,omitempty"`
	Message     string               `json:"message,omitempty"`
}

// FlowEngineInterface defines the step-callback contract of the authentication flow.
//
// Steps execute strictly in increasing order. A failed step leaves the session
// at the same step for retry; only a duplicate enrollment fails the session
// outright.
type FlowEngineInterface interface {
	// Init starts a new authentication session at the credential step.
	Init() *session.AuthSession
	// Authenticate executes the given step against the session.
	Authenticate(ctx context.Context, sessionID string, requestParams map[string]string,
		step int) (*StepResult, *serviceerror.ServiceError)
	// PrepareForStep performs the side effects needed before rendering the
	// given step, such as issuing the second-factor challenge.
	PrepareForStep(ctx context.Context, sessionID string, step int) (bool, *serviceerror.ServiceError)
	// GetExtraParametersForStep returns the working parameter keys preserved
	// into the given step. Parameters not listed are dropped on step advance.
	GetExtraParametersForStep(step, totalSteps int) []string
	// GetCountAuthenticationSteps returns the step count for the session,
	// recomputed from the current enrollment state.
	GetCountAuthenticationSteps(sessionID string) int
	// GetPageForStep returns the page rendered for the given step.
	GetPageForStep(step, totalSteps int) string
	// Logout terminates the session and abandons any outstanding challenge.
	Logout(sessionID string) bool
}

// flowEngine is the default implementation of FlowEngineInterface.
type flowEngine struct {
	sessions        session.SessionStoreInterface
	users           user.UserServiceInterface
	credentials     credentials.CredentialsAuthnServiceInterface
	challenges      challenge.ChallengeServiceInterface
	defaultProvider string
}

var (
	instance *flowEngine
	once     sync.Once
)

// GetFlowEngine returns the singleton flow engine configured from the
// deployment configuration.
func GetFlowEngine() FlowEngineInterface {
	once.Do(func() {
		instance = &flowEngine{
			sessions:        session.GetSessionStore(),
			users:           user.GetUserService(),
			credentials:     credentials.NewCredentialsAuthnService(nil),
			challenges:      challenge.GetChallengeService(),
			defaultProvider: config.GetStepAuthRuntime().Config.Flow.DefaultProvider,
		}
	})
	return instance
}

// NewFlowEngine creates a flow engine with explicit collaborators.
func NewFlowEngine(sessions session.SessionStoreInterface, users user.UserServiceInterface,
	credentialsSvc credentials.CredentialsAuthnServiceInterface,
	challenges challenge.ChallengeServiceInterface, defaultProvider string) FlowEngineInterface {
	return &flowEngine{
		sessions:        sessions,
		users:           users,
		credentials:     credentialsSvc,
		challenges:      challenges,
		defaultProvider: defaultProvider,
	}
}

// Init starts a new authentication session at the credential step.
func (e *flowEngine) Init() *session.AuthSession {
	return e.sessions.CreateSession("", "", totalStepsEnrolled)
}

// Authenticate executes the given step against the session.
func (e *flowEngine) Authenticate(ctx context.Context, sessionID string,
	requestParams map[string]string, step int) (*StepResult, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeySessionID, sessionID), log.Int(log.LoggerKeyStep, step))

	sess, found := e.sessions.GetSession(sessionID)
	if !found {
		return nil, &ErrorSessionNotFound
	}
	if sess.State == session.SessionStateFailed {
		return nil, &ErrorFlowFailed
	}
	if sess.State == session.SessionStateAuthenticated {
		return nil, &ErrorStateMismatch
	}

	// Step count is a pure function of the enrollment state, recomputed on
	// every step so it never drifts from the directory.
	sess.TotalSteps = e.countStepsFor(sess)
	if step != sess.CurrentStep {
		logger.Debug("Requested step does not match session state",
			log.Int("currentStep", sess.CurrentStep))
		return nil, &ErrorStateMismatch
	}

	var success, fatal bool
	var message string
	switch {
	case step == stepCredential:
		success, message = e.authenticateCredentialStep(sess, requestParams)
	case e.isPairStep(step, sess.TotalSteps):
		success, fatal, message = e.authenticatePairStep(ctx, sess)
	default:
		success, message = e.authenticateVerifyStep(ctx, sess, requestParams)
	}

	if fatal {
		sess.State = session.SessionStateFailed
		e.sessions.UpdateSession(sess)
		metrics.GetMetrics().Authentications.WithLabelValues("failure").Inc()
		logger.Warn("Authentication flow failed", log.String("reason", "duplicate enrollment"))
		return e.resultFor(sess, false, message), nil
	}

	if !success {
		e.sessions.UpdateSession(sess)
		logger.Debug("Step failed", log.String("message", message))
		return e.resultFor(sess, false, message), nil
	}

	// The credential step reveals the user; the step count may change here.
	sess.TotalSteps = e.countStepsFor(sess)

	if sess.CurrentStep >= sess.TotalSteps {
		sess.State = session.SessionStateAuthenticated
		assertion, err := issueAssertion(sess)
		if err != nil {
			logger.Error("Failed to issue assertion", log.Error(err))
			return nil, &ErrorInternalServerError
		}
		e.sessions.UpdateSession(sess)
		metrics.GetMetrics().Authentications.WithLabelValues("success").Inc()
		logger.Debug("Authentication flow completed")

		result := e.resultFor(sess, true, "")
		result.Assertion = assertion
		return result, nil
	}

	sess.CurrentStep++
	sess.PruneWorkingParameters(e.GetExtraParametersForStep(sess.CurrentStep, sess.TotalSteps))
	e.sessions.UpdateSession(sess)
	return e.resultFor(sess, true, ""), nil
}

// PrepareForStep performs the side effects needed before the given step.
func (e *flowEngine) PrepareForStep(ctx context.Context, sessionID string,
	step int) (bool, *serviceerror.ServiceError) {
	sess, found := e.sessions.GetSession(sessionID)
	if !found {
		return false, &ErrorSessionNotFound
	}
	if sess.State != session.SessionStateInProgress {
		return false, nil
	}

	sess.TotalSteps = e.countStepsFor(sess)
	if step != sess.CurrentStep {
		return false, &ErrorStateMismatch
	}

	switch {
	case step == stepCredential:
		return true, nil
	case e.isPairStep(step, sess.TotalSteps):
		return e.prepareChallenge(ctx, sess, model.ChallengeKindPair, paramPairingRequestID), nil
	default:
		return e.prepareChallenge(ctx, sess, model.ChallengeKindAuthenticate, paramChallengeRequestID), nil
	}
}

// GetExtraParametersForStep returns the working parameter keys preserved into
// the given step.
func (e *flowEngine) GetExtraParametersForStep(step, totalSteps int) []string {
	switch {
	case step <= stepCredential:
		return nil
	case e.isPairStep(step, totalSteps):
		return []string{paramProviderName, paramPairingRequestID}
	case totalSteps == totalStepsNotEnrolled:
		return []string{paramProviderName, paramPairingRequestID, paramChallengeRequestID}
	default:
		return []string{paramProviderName, paramChallengeRequestID}
	}
}

// GetCountAuthenticationSteps returns the step count for the session.
func (e *flowEngine) GetCountAuthenticationSteps(sessionID string) int {
	sess, found := e.sessions.GetSession(sessionID)
	if !found {
		return totalStepsEnrolled
	}
	return e.countStepsFor(sess)
}

// GetPageForStep returns the page rendered for the given step.
func (e *flowEngine) GetPageForStep(step, totalSteps int) string {
	switch {
	case step <= stepCredential:
		return pageLogin
	case e.isPairStep(step, totalSteps):
		return pagePair
	default:
		return pageVerify
	}
}

// Logout terminates the session and abandons any outstanding challenge.
func (e *flowEngine) Logout(sessionID string) bool {
	if sess, found := e.sessions.GetSession(sessionID); found {
		for _, paramKey := range []string{paramPairingRequestID, paramChallengeRequestID} {
			if requestID, ok := sess.GetWorkingParameter(paramKey); ok {
				e.challenges.AbandonChallenge(requestID)
			}
		}
	}
	e.sessions.DeleteSession(sessionID)
	return true
}

// countStepsFor computes the step count from the session and enrollment state.
// A pairing flow already started in this session keeps its three steps even
// after the enrollment record is written.
func (e *flowEngine) countStepsFor(sess *session.AuthSession) int {
	if sess.UserID == "" {
		return totalStepsEnrolled
	}
	if _, ok := sess.GetWorkingParameter(paramPairingRequestID); ok {
		return totalStepsNotEnrolled
	}

	enrollment, svcErr := e.users.GetEnrollment(sess.UserID, e.providerFor(sess))
	if svcErr != nil || enrollment == nil {
		return totalStepsNotEnrolled
	}
	return totalStepsEnrolled
}

func (e *flowEngine) isPairStep(step, totalSteps int) bool {
	return totalSteps == totalStepsNotEnrolled && step == totalSteps-1
}

func (e *flowEngine) providerFor(sess *session.AuthSession) string {
	if name, ok := sess.GetWorkingParameter(paramProviderName); ok {
		return name
	}
	return e.defaultProvider
}

// authenticateCredentialStep validates the primary credentials.
func (e *flowEngine) authenticateCredentialStep(sess *session.AuthSession,
	requestParams map[string]string) (bool, string) {
	authUser, svcErr := e.credentials.Authenticate(requestParams[ParamUsername],
		requestParams[ParamPassword])
	if svcErr != nil {
		return false, messageInvalidCredentials
	}

	sess.UserID = authUser.UserID
	sess.Username = authUser.Username
	sess.SetWorkingParameter(paramProviderName, e.defaultProvider)
	return true, ""
}

// authenticatePairStep waits for the pairing challenge to resolve and writes
// the enrollment record. A duplicate enrollment is the only fatal outcome.
func (e *flowEngine) authenticatePairStep(ctx context.Context,
	sess *session.AuthSession) (success, fatal bool, message string) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeySessionID, sess.SessionID))

	requestID, ok := sess.GetWorkingParameter(paramPairingRequestID)
	if !ok {
		logger.Warn("Pairing request identifier missing from session")
		return false, false, messageTryAgain
	}

	resolution, svcErr := e.challenges.AwaitResolution(ctx, requestID)
	if svcErr != nil {
		logger.Error("Failed to resolve pairing challenge", log.String("errorCode", svcErr.Code))
		return false, false, messageTryAgain
	}

	switch resolution.Status {
	case model.ChallengeStatusApproved:
		externalUID := resolution.ExternalRef
		if externalUID == "" {
			externalUID = resolution.RequestID
		}
		if svcErr := e.users.AddEnrollment(sess.UserID, e.providerFor(sess), externalUID); svcErr != nil {
			if svcErr.Code == user.ErrorDuplicateEnrollment.Code {
				return false, true, ""
			}
			logger.Error("Failed to write enrollment record", log.String("errorCode", svcErr.Code))
			return false, false, messageTryAgain
		}
		return true, false, ""
	case model.ChallengeStatusDeclined:
		return false, false, messageDeclined
	default:
		return false, false, messageExpired
	}
}

// authenticateVerifyStep waits for the authentication challenge to resolve,
// matching a submitted code first when one is present.
func (e *flowEngine) authenticateVerifyStep(ctx context.Context, sess *session.AuthSession,
	requestParams map[string]string) (bool, string) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeySessionID, sess.SessionID))

	requestID, ok := sess.GetWorkingParameter(paramChallengeRequestID)
	if !ok {
		logger.Warn("Challenge request identifier missing from session")
		return false, messageTryAgain
	}

	if code := requestParams[ParamCode]; code != "" {
		if _, svcErr := e.challenges.VerifyCode(requestID, code); svcErr != nil {
			switch svcErr.Code {
			case challenge.ErrorInvalidCode.Code:
				return false, messageWrongCode
			case challenge.ErrorChallengeExpired.Code:
				return false, messageExpired
			default:
				return false, messageTryAgain
			}
		}
	}

	resolution, svcErr := e.challenges.AwaitResolution(ctx, requestID)
	if svcErr != nil {
		logger.Error("Failed to resolve authentication challenge", log.String("errorCode", svcErr.Code))
		return false, messageTryAgain
	}

	switch resolution.Status {
	case model.ChallengeStatusApproved:
		return true, ""
	case model.ChallengeStatusDeclined:
		return false, messageDeclined
	default:
		return false, messageExpired
	}
}

// prepareChallenge issues the challenge for a second-factor step, preferring an
// outstanding pending challenge over issuing a duplicate notification.
func (e *flowEngine) prepareChallenge(ctx context.Context, sess *session.AuthSession,
	kind model.ChallengeKind, paramKey string) bool {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeySessionID, sess.SessionID))

	if requestID, ok := sess.GetWorkingParameter(paramKey); ok {
		if existing, found := e.challenges.GetChallenge(requestID); found &&
			existing.Status == model.ChallengeStatusPending &&
			time.Now().Before(existing.ExpiresAt()) {
			return true
		}
	}

	subject, ok := e.subjectFor(sess)
	if !ok {
		return false
	}

	externalUID := ""
	if kind == model.ChallengeKindAuthenticate {
		enrollment, svcErr := e.users.GetEnrollment(sess.UserID, e.providerFor(sess))
		if svcErr != nil || enrollment == nil {
			logger.Warn("No enrollment found for authentication challenge")
			return false
		}
		externalUID = enrollment.ExternalUID
	}

	issued, svcErr := e.challenges.IssueChallenge(ctx, e.providerFor(sess), kind, subject, externalUID)
	if svcErr != nil {
		logger.Error("Failed to issue challenge", log.String("errorCode", svcErr.Code))
		return false
	}

	sess.SetWorkingParameter(paramKey, issued.RequestID)
	e.sessions.UpdateSession(sess)
	return true
}

// subjectFor builds the challenge subject from the user entry.
func (e *flowEngine) subjectFor(sess *session.AuthSession) (model.Subject, bool) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	u, svcErr := e.users.GetUser(sess.UserID)
	if svcErr != nil {
		logger.Error("Failed to load user for challenge subject", log.String("errorCode", svcErr.Code))
		return model.Subject{}, false
	}

	attributes, err := user.UnmarshalAttributes(u.Attributes)
	if err != nil {
		logger.Error("Failed to unmarshal user attributes", log.Error(err))
		return model.Subject{}, false
	}

	return model.Subject{
		UserID:     u.ID,
		Username:   u.Username,
		Attributes: attributes,
	}, true
}

func (e *flowEngine) resultFor(sess *session.AuthSession, success bool, message string) *StepResult {
	return &StepResult{
		SessionID:   sess.SessionID,
		Success:     success,
		State:       sess.State,
		CurrentStep: sess.CurrentStep,
		TotalSteps:  sess.TotalSteps,
		Page:        e.GetPageForStep(sess.CurrentStep, sess.TotalSteps),
		Message:     message,
	}
}

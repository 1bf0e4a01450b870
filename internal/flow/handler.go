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
	"net/http"

	"github.com/asgardeo/stepauth/internal/challenge"
	chalmodel "github.com/asgardeo/stepauth/internal/challenge/model"
	"github.com/asgardeo/stepauth/internal/session"
	"github.com/asgardeo/stepauth/internal/system/error/serviceerror"
	"github.com/asgardeo/stepauth/internal/system/log"
	"github.com/asgardeo/stepauth/internal/system/utils"
)

const handlerLoggerComponentName = "FlowHandler"

// authenticateRequest is the payload of the authenticate operation.
type authenticateRequest struct {
	SessionID string            `json:"sessionId,omitempty"`
	Inputs    map[string]string `json:"inputs,omitempty"`
}

// callbackRequest is the payload of a provider callback.
type callbackRequest struct {
	Status      string `json:"status"`
	ExternalRef string `json:"externalRef,omitempty"`
}

// FlowHandler handles the HTTP surface of the authentication flow.
type FlowHandler struct {
	engine     FlowEngineInterface
	sessions   session.SessionStoreInterface
	challenges challenge.ChallengeServiceInterface
}

// NewFlowHandler creates a flow handler backed by the default collaborators.
func NewFlowHandler() *FlowHandler {
	return &FlowHandler{
		engine:     GetFlowEngine(),
		sessions:   session.GetSessionStore(),
		challenges: challenge.GetChallengeService(),
	}
}

// HandleAuthenticateRequest executes the current step of the session. A
// request without a session identifier starts a new session at step one.
func (h *FlowHandler) HandleAuthenticateRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	var request authenticateRequest
	if err := utils.DecodeJSONBody(r, &request); err != nil {
		utils.WriteJSONError(w, ErrorInvalidRequest.Code, ErrorInvalidRequest.ErrorDescription,
			http.StatusBadRequest)
		return
	}

	sessionID := request.SessionID
	if sessionID == "" {
		sess := h.engine.Init()
		sessionID = sess.SessionID
		logger.Debug("Started authentication session",
			log.String(log.LoggerKeySessionID, sessionID))
	}

	sess, found := h.sessions.GetSession(sessionID)
	if !found {
		utils.WriteJSONError(w, ErrorSessionNotFound.Code, ErrorSessionNotFound.ErrorDescription,
			http.StatusNotFound)
		return
	}

	result, svcErr := h.engine.Authenticate(r.Context(), sessionID, request.Inputs, sess.CurrentStep)
	if svcErr != nil {
		writeServiceError(w, svcErr)
		return
	}

	// Re-render the next (or same, on failure) step. Preparing reissues the
	// challenge when the previous one already reached a terminal status.
	if result.State == session.SessionStateInProgress {
		prepared, svcErr := h.engine.PrepareForStep(r.Context(), sessionID, result.CurrentStep)
		if svcErr != nil {
			writeServiceError(w, svcErr)
			return
		}
		if !prepared {
			result.Message = messageTryAgain
		}
	}

	statusCode := http.StatusOK
	if result.State == session.SessionStateFailed {
		statusCode = http.StatusForbidden
	}
	utils.WriteJSONResponse(w, statusCode, result)
}

// HandleCallbackRequest applies a provider callback to an outstanding challenge.
func (h *FlowHandler) HandleCallbackRequest(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("requestID")
	if requestID == "" {
		utils.WriteJSONError(w, ErrorInvalidRequest.Code, ErrorInvalidRequest.ErrorDescription,
			http.StatusBadRequest)
		return
	}

	var request callbackRequest
	if err := utils.DecodeJSONBody(r, &request); err != nil {
		utils.WriteJSONError(w, ErrorInvalidRequest.Code, ErrorInvalidRequest.ErrorDescription,
			http.StatusBadRequest)
		return
	}

	svcErr := h.challenges.ResolveCallback(requestID,
		chalmodel.ChallengeStatus(request.Status), request.ExternalRef)
	if svcErr != nil {
		writeServiceError(w, svcErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLogoutRequest terminates the session.
func (h *FlowHandler) HandleLogoutRequest(w http.ResponseWriter, r *http.Request) {
	var request authenticateRequest
	if err := utils.DecodeJSONBody(r, &request); err != nil || request.SessionID == "" {
		utils.WriteJSONError(w, ErrorInvalidRequest.Code, ErrorInvalidRequest.ErrorDescription,
			http.StatusBadRequest)
		return
	}

	h.engine.Logout(request.SessionID)
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, svcErr *serviceerror.ServiceError) {
	statusCode := http.StatusBadRequest
	if svcErr.Type == serviceerror.ServerErrorType {
		statusCode = http.StatusInternalServerError
	} else if svcErr.Code == ErrorSessionNotFound.Code ||
		svcErr.Code == challenge.ErrorChallengeNotFound.Code {
		statusCode = http.StatusNotFound
	} else if svcErr.Code == ErrorFlowFailed.Code {
		statusCode = http.StatusForbidden
	}
	utils.WriteJSONError(w, svcErr.Code, svcErr.ErrorDescription, statusCode)
}

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

package services

import (
	"net/http"

	"github.com/asgardeo/stepauth/internal/flow"
)

// FlowService defines the service for the multi-step authentication flow.
type FlowService struct {
	flowHandler *flow.FlowHandler
}

// NewFlowService creates a new instance of FlowService.
func NewFlowService(mux *http.ServeMux) ServiceInterface {
	instance := &FlowService{
		flowHandler: flow.NewFlowHandler(),
	}
	instance.RegisterRoutes(mux)

	return instance
}

// RegisterRoutes registers the routes for the FlowService.
func (f *FlowService) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /flow/authenticate", f.flowHandler.HandleAuthenticateRequest)
	mux.HandleFunc("POST /flow/callback/{requestID}", f.flowHandler.HandleCallbackRequest)
	mux.HandleFunc("POST /flow/logout", f.flowHandler.HandleLogoutRequest)
}

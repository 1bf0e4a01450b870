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

// Package handler provides the HTTP handlers for health check endpoints.
package handler

import (
	"net/http"

	"github.com/asgardeo/stepauth/internal/system/healthcheck/model"
	"github.com/asgardeo/stepauth/internal/system/healthcheck/service"
	"github.com/asgardeo/stepauth/internal/system/utils"
)

// HealthCheckHandler handles liveness and readiness requests.
type HealthCheckHandler struct {
	healthCheckService service.HealthCheckServiceInterface
}

// NewHealthCheckHandler creates a new instance of HealthCheckHandler.
func NewHealthCheckHandler() *HealthCheckHandler {
	return &HealthCheckHandler{
		healthCheckService: service.GetHealthCheckService(),
	}
}

// HandleLivenessRequest responds to liveness probes.
func (h *HealthCheckHandler) HandleLivenessRequest(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HandleReadinessRequest responds to readiness probes with dependency statuses.
func (h *HealthCheckHandler) HandleReadinessRequest(w http.ResponseWriter, _ *http.Request) {
	serverStatus := h.healthCheckService.CheckReadiness()

	statusCode := http.StatusOK
	if serverStatus.Status == model.StatusDown {
		statusCode = http.StatusServiceUnavailable
	}
	utils.WriteJSONResponse(w, statusCode, serverStatus)
}

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

// Package metrics provides the Prometheus metric registry for the server.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	instance *Metrics
	once     sync.Once
)

// Metrics holds the Prometheus collectors published by the server.
type Metrics struct {
	registry *prometheus.Registry

	ChallengesIssued   *prometheus.CounterVec
	ChallengesResolved *prometheus.CounterVec
	Authentications    *prometheus.CounterVec
}

// GetMetrics returns a singleton instance of the server metrics.
func GetMetrics() *Metrics {
	once.Do(func() {
		instance = newMetrics()
	})
	return instance
}

func newMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ChallengesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepauth_challenges_issued_total",
			Help: "Total number of second-factor challenges issued, by provider and kind.",
		}, []string{"provider", "kind"}),
		ChallengesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepauth_challenges_resolved_total",
			Help: "Total number of second-factor challenges resolved, by terminal status.",
		}, []string{"status"}),
		Authentications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepauth_authentications_total",
			Help: "Total number of completed authentication flows, by result.",
		}, []string{"result"}),
	}

	registry.MustRegister(m.ChallengesIssued, m.ChallengesResolved, m.Authentications)
	return m
}

// Handler returns the HTTP handler serving the metric registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

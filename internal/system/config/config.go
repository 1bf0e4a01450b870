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

// Package config provides structures and functions for loading and managing server configurations.
package config

import (
	"os"
	"path/filepath"

	"github.com/asgardeo/stepauth/internal/system/log"

	yaml "gopkg.in/yaml.v3"
)

// ServerConfig holds the server configuration details.
type ServerConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	HTTPOnly bool   `yaml:"http_only"`
}

// SecurityConfig holds the security configuration details.
type SecurityConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// DataSource holds the individual database connection details.
type DataSource struct {
	Type     string `yaml:"type"`
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"`
	Options  string `yaml:"options"`
}

// DatabaseConfig holds the different database configuration details.
type DatabaseConfig struct {
	Identity DataSource `yaml:"identity"`
}

// SessionConfig holds the authentication session configuration details.
type SessionConfig struct {
	ValidityPeriodSeconds int `yaml:"validity_period_seconds"`
}

// AssertionConfig holds the configuration for the assertion issued on successful authentication.
type AssertionConfig struct {
	Issuer                string `yaml:"issuer"`
	SigningKey            string `yaml:"signing_key"`
	ValidityPeriodSeconds int64  `yaml:"validity_period_seconds"`
}

// RateLimitConfig holds the outbound rate limit details for a provider client.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Provider holds the configuration details for an individual second-factor provider.
type Provider struct {
	Name           string            `yaml:"name"`
	Type           string            `yaml:"type"`
	DisplayName    string            `yaml:"display_name"`
	BaseURL        string            `yaml:"base_url"`
	APIKey         string            `yaml:"api_key"`
	APISecret      string            `yaml:"api_secret"`
	SenderName     string            `yaml:"sender_name"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	RateLimit      RateLimitConfig   `yaml:"rate_limit"`
	Properties     map[string]string `yaml:"properties"`
}

// MessageSender holds the configuration details for an outbound message sender.
type MessageSender struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Properties map[string]string `yaml:"properties"`
}

// ChallengeConfig holds the challenge resolution configuration details.
type ChallengeConfig struct {
	PollIntervalSeconds   int    `yaml:"poll_interval_seconds"`
	DefaultTimeoutSeconds int    `yaml:"default_timeout_seconds"`
	ResolutionStrategy    string `yaml:"resolution_strategy"`
}

// FlowConfig holds the configuration details for the authentication flow.
type FlowConfig struct {
	DefaultProvider string `yaml:"default_provider"`
}

// Config holds the complete configuration details of the server.
type Config struct {
	Server         ServerConfig    `yaml:"server"`
	Security       SecurityConfig  `yaml:"security"`
	Database       DatabaseConfig  `yaml:"database"`
	Session        SessionConfig   `yaml:"session"`
	Assertion      AssertionConfig `yaml:"assertion"`
	Challenge      ChallengeConfig `yaml:"challenge"`
	Flow           FlowConfig      `yaml:"flow"`
	Providers      []Provider      `yaml:"providers"`
	MessageSenders []MessageSender `yaml:"message_senders"`
}

// LoadConfig loads the configurations from the specified YAML file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	path = filepath.Clean(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if ferr := file.Close(); ferr != nil {
			log.GetLogger().Error("Failed to close config file", log.Error(ferr))
		}
	}()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetProvider returns the provider configuration with the given name.
func (c *Config) GetProvider(name string) *Provider {
	for i := range c.Providers {
		if c.Providers[i].Name == name {
			return &c.Providers[i]
		}
	}
	return nil
}

// GetMessageSender returns the message sender configuration with the given name.
func (c *Config) GetMessageSender(name string) *MessageSender {
	for i := range c.MessageSenders {
		if c.MessageSenders[i].Name == name {
			return &c.MessageSenders[i]
		}
	}
	return nil
}

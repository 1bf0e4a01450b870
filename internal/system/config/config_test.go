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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const testConfigYAML = `
server:
  hostname: "localhost"
  port: 8095
  http_only: true

database:
  identity:
    type: "sqlite"
    path: "repository/database/identitydb.db"

session:
  validity_period_seconds: 900

assertion:
  issuer: "stepauth"
  signing_key: "test-signing-key"
  validity_period_seconds: 300

challenge:
  poll_interval_seconds: 2
  default_timeout_seconds: 120
  resolution_strategy: "polling"

flow:
  default_provider: "oxpush"

providers:
  - name: "oxpush"
    type: "push"
    display_name: "Super Gluu"
    base_url: "https://oxpush.example.com"
    api_key: "api-key"
    timeout_seconds: 120
    rate_limit:
      requests_per_second: 10
      burst: 5
  - name: "smsotp"
    type: "smsotp"
    sender_name: "twilio-default"
    properties:
      mobile_attribute: "mobile"

message_senders:
  - name: "twilio-default"
    type: "twilio"
    properties:
      account_sid: "AC00000000000000000000000000000000"
      auth_token: "token"
      sender_id: "+15550009999"
`

type ConfigTestSuite struct {
	suite.Suite
	config *Config
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	path := filepath.Join(suite.T().TempDir(), "deployment.yaml")
	assert.NoError(suite.T(), os.WriteFile(path, []byte(testConfigYAML), 0600))

	cfg, err := LoadConfig(path)
	assert.NoError(suite.T(), err)
	suite.config = cfg
}

func (suite *ConfigTestSuite) TestLoadConfig() {
	assert.Equal(suite.T(), "localhost", suite.config.Server.Hostname)
	assert.Equal(suite.T(), 8095, suite.config.Server.Port)
	assert.True(suite.T(), suite.config.Server.HTTPOnly)
	assert.Equal(suite.T(), "sqlite", suite.config.Database.Identity.Type)
	assert.Equal(suite.T(), 900, suite.config.Session.ValidityPeriodSeconds)
	assert.Equal(suite.T(), "stepauth", suite.config.Assertion.Issuer)
	assert.Equal(suite.T(), 2, suite.config.Challenge.PollIntervalSeconds)
	assert.Equal(suite.T(), "oxpush", suite.config.Flow.DefaultProvider)
}

func (suite *ConfigTestSuite) TestLoadConfigMissingFile() {
	cfg, err := LoadConfig(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	assert.Nil(suite.T(), cfg)
	assert.Error(suite.T(), err)
}

func (suite *ConfigTestSuite) TestGetProvider() {
	provider := suite.config.GetProvider("oxpush")
	assert.NotNil(suite.T(), provider)
	assert.Equal(suite.T(), "push", provider.Type)
	assert.Equal(suite.T(), float64(10), provider.RateLimit.RequestsPerSecond)

	assert.Nil(suite.T(), suite.config.GetProvider("unknown"))
}

func (suite *ConfigTestSuite) TestGetMessageSender() {
	sender := suite.config.GetMessageSender("twilio-default")
	assert.NotNil(suite.T(), sender)
	assert.Equal(suite.T(), "twilio", sender.Type)
	assert.Equal(suite.T(), "+15550009999", sender.Properties["sender_id"])

	assert.Nil(suite.T(), suite.config.GetMessageSender("unknown"))
}

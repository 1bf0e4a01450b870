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

package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/asgardeo/stepauth/internal/system/config"
	syshttp "github.com/asgardeo/stepauth/internal/system/http"
	"github.com/asgardeo/stepauth/internal/system/log"
)

const customLoggerComponentName = "CustomMessageClient"

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// CustomClient implements the MessageClientInterface for sending messages via a custom HTTP endpoint.
type CustomClient struct {
	name        string
	url         string
	httpMethod  string
	contentType string
	httpClient  syshttp.HTTPClientInterface
}

// NewCustomClient creates a new instance of CustomClient.
func NewCustomClient(sender config.MessageSender) (MessageClientInterface, error) {
	client := &CustomClient{}

	if err := client.validate(sender); err != nil {
		return nil, fmt.Errorf("failed to validate custom message client: %w", err)
	}

	client.name = sender.Name
	client.url = sender.Properties[CustomPropKeyURL]
	client.httpMethod = sender.Properties[CustomPropKeyHTTPMethod]
	if client.httpMethod == "" {
		client.httpMethod = http.MethodPost
	}
	client.contentType = sender.Properties[CustomPropKeyContentType]
	if client.contentType == "" {
		client.contentType = contentTypeJSON
	}
	client.httpClient = syshttp.GetHTTPClient()

	return client, nil
}

// GetName returns the name of the custom message client.
func (c *CustomClient) GetName() string {
	return c.name
}

// validate checks if the custom client is properly configured.
func (c *CustomClient) validate(sender config.MessageSender) error {
	rawURL := sender.Properties[CustomPropKeyURL]
	if rawURL == "" {
		return errors.New("custom sender URL is required")
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return fmt.Errorf("invalid custom sender URL: %w", err)
	}

	contentType := sender.Properties[CustomPropKeyContentType]
	if contentType != "" && contentType != contentTypeJSON && contentType != contentTypeForm {
		return fmt.Errorf("unsupported content type: %s", contentType)
	}

	return nil
}

// SendSMS sends an SMS through the configured custom HTTP endpoint.
func (c *CustomClient) SendSMS(sms SMSData) error {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, customLoggerComponentName))
	logger.Debug("Sending SMS via custom endpoint", log.String("to", log.MaskString(sms.To)))

	var body io.Reader
	switch c.contentType {
	case contentTypeJSON:
		payload, err := json.Marshal(sms)
		if err != nil {
			return fmt.Errorf("failed to marshal SMS payload: %w", err)
		}
		body = strings.NewReader(string(payload))
	case contentTypeForm:
		formData := url.Values{}
		formData.Set("to", sms.To)
		formData.Set("body", sms.Body)
		body = strings.NewReader(formData.Encode())
	default:
		return fmt.Errorf("unsupported content type: %s", c.contentType)
	}

	req, err := http.NewRequest(c.httpMethod, c.url, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", c.contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("Failed to close response body", log.Error(closeErr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Failed to send SMS", log.Int("statusCode", resp.StatusCode))
		return fmt.Errorf("failed to send SMS, status code: %d", resp.StatusCode)
	}

	return nil
}

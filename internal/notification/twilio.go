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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/asgardeo/stepauth/internal/system/config"
	syshttp "github.com/asgardeo/stepauth/internal/system/http"
	"github.com/asgardeo/stepauth/internal/system/log"
)

const (
	twilioURL                 = "https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json"
	twilioLoggerComponentName = "TwilioClient"
	sIDRegex                  = `^AC[0-9a-fA-F]{32}$`
)

// TwilioClient implements the MessageClientInterface for sending messages via the Twilio API.
type TwilioClient struct {
	name       string
	accountSID string
	authToken  string
	senderID   string
	httpClient syshttp.HTTPClientInterface
}

// NewTwilioClient creates a new instance of TwilioClient.
func NewTwilioClient(sender config.MessageSender) (MessageClientInterface, error) {
	client := &TwilioClient{}

	if err := client.validate(sender); err != nil {
		return nil, fmt.Errorf("failed to validate Twilio client: %w", err)
	}

	client.name = sender.Name
	client.accountSID = sender.Properties[TwilioPropKeyAccountSID]
	client.authToken = sender.Properties[TwilioPropKeyAuthToken]
	client.senderID = sender.Properties[TwilioPropKeySenderID]
	client.httpClient = syshttp.GetHTTPClient()

	return client, nil
}

// GetName returns the name of the Twilio client.
func (c *TwilioClient) GetName() string {
	return c.name
}

// validate checks if the Twilio client is properly configured.
func (c *TwilioClient) validate(sender config.MessageSender) error {
	if sender.Properties[TwilioPropKeyAccountSID] == "" {
		return errors.New("Twilio account SID is required")
	}
	matched, err := regexp.MatchString(sIDRegex, sender.Properties[TwilioPropKeyAccountSID])
	if err != nil {
		return fmt.Errorf("failed to validate Twilio account SID: %w", err)
	}
	if !matched {
		return errors.New("Invalid Twilio account SID format")
	}

	if sender.Properties[TwilioPropKeyAuthToken] == "" {
		return errors.New("Twilio auth token is required")
	}
	if sender.Properties[TwilioPropKeySenderID] == "" {
		return errors.New("Twilio sender ID is required")
	}

	return nil
}

// SendSMS sends an SMS using the Twilio API.
func (c *TwilioClient) SendSMS(sms SMSData) error {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, twilioLoggerComponentName))
	logger.Debug("Sending SMS via Twilio", log.String("to", log.MaskString(sms.To)))

	requestURL := fmt.Sprintf(twilioURL, c.accountSID)
	formData := url.Values{}
	formData.Set("to", sms.To)
	formData.Set("from", c.senderID)
	formData.Set("body", sms.Body)

	req, err := http.NewRequest(http.MethodPost, requestURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("Failed to close response body", log.Error(closeErr))
		}
	}()

	logger.Debug("Received response from Twilio", log.Int("statusCode", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Error("Failed to send SMS", log.Int("statusCode", resp.StatusCode),
			log.String("response", string(bodyBytes)))
		return fmt.Errorf("failed to send SMS, status code: %d", resp.StatusCode)
	}

	return nil
}

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

// Package notification provides outbound message delivery for second-factor challenges.
package notification

// SMSData holds the details of an outbound SMS message.
type SMSData struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// MessageClientInterface defines the interface for outbound message clients.
type MessageClientInterface interface {
	// GetName returns the configured name of the message client.
	GetName() string
	// SendSMS sends an SMS message through the underlying provider.
	SendSMS(sms SMSData) error
}

// Message sender types supported in the deployment configuration.
const (
	MessageSenderTypeTwilio = "twilio"
	MessageSenderTypeCustom = "custom"
)

// Property keys for the Twilio message sender.
const (
	TwilioPropKeyAccountSID = "account_sid"
	TwilioPropKeyAuthToken  = "auth_token"
	TwilioPropKeySenderID   = "sender_id"
)

// Property keys for the custom message sender.
const (
	CustomPropKeyURL         = "url"
	CustomPropKeyHTTPMethod  = "http_method"
	CustomPropKeyContentType = "content_type"
)

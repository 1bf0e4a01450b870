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

package provider

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/asgardeo/stepauth/internal/challenge/model"
	"github.com/asgardeo/stepauth/internal/challenge/store"
	"github.com/asgardeo/stepauth/internal/notification"
	"github.com/asgardeo/stepauth/internal/system/config"
	"github.com/asgardeo/stepauth/internal/system/log"
	"github.com/asgardeo/stepauth/internal/system/utils"
)

const smsOTPLoggerComponentName = "SMSOTPProvider"

const (
	otpLength = 6

	// smsOTPPropKeyMobileAttribute names the user attribute holding the destination number.
	smsOTPPropKeyMobileAttribute = "mobile_attribute"
	defaultMobileAttribute       = "mobile"
)

// SMSOTPProvider implements the SecondFactorProviderInterface by sending a one
// time passcode over SMS. Unlike the push adapter the challenge is resolved
// locally: CheckStatus reads the challenge store, and the code is matched when
// the user submits it back through the flow.
type SMSOTPProvider struct {
	name            string
	displayName     string
	senderName      string
	mobileAttribute string
	timeoutSeconds  int
	messageClients  notification.MessageClientServiceInterface
	challengeStore  store.ChallengeStoreInterface
}

// NewSMSOTPProvider creates an SMS OTP provider from the given provider configuration.
func NewSMSOTPProvider(cfg config.Provider,
	challengeStore store.ChallengeStoreInterface) (SecondFactorProviderInterface, error) {
	if cfg.SenderName == "" {
		return nil, fmt.Errorf("sender name is required for SMS OTP provider: %s", cfg.Name)
	}

	timeoutSeconds := cfg.TimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultChallengeTimeoutSeconds
	}

	mobileAttribute := cfg.Properties[smsOTPPropKeyMobileAttribute]
	if mobileAttribute == "" {
		mobileAttribute = defaultMobileAttribute
	}

	if challengeStore == nil {
		challengeStore = store.GetChallengeStore()
	}

	return &SMSOTPProvider{
		name:            cfg.Name,
		displayName:     cfg.DisplayName,
		senderName:      cfg.SenderName,
		mobileAttribute: mobileAttribute,
		timeoutSeconds:  timeoutSeconds,
		messageClients:  notification.GetMessageClientService(),
		challengeStore:  challengeStore,
	}, nil
}

// GetName returns the configured name of the SMS OTP provider.
func (p *SMSOTPProvider) GetName() string {
	return p.name
}

// GetDisplayName returns the human readable name of the SMS OTP provider.
func (p *SMSOTPProvider) GetDisplayName() string {
	if p.displayName != "" {
		return p.displayName
	}
	return p.name
}

// InitiatePairing sends an OTP to the number in the subject's attributes to
// verify ownership of the destination before it is enrolled.
func (p *SMSOTPProvider) InitiatePairing(ctx context.Context,
	subject model.Subject) (*model.ChallengeRequest, error) {
	destination := subject.Attributes[p.mobileAttribute]
	if destination == "" {
		return nil, fmt.Errorf("subject has no %q attribute to pair", p.mobileAttribute)
	}
	return p.issue(ctx, model.ChallengeKindPair, subject, destination)
}

// InitiateAuthentication sends an OTP to the enrolled destination.
func (p *SMSOTPProvider) InitiateAuthentication(ctx context.Context, subject model.Subject,
	externalUID string) (*model.ChallengeRequest, error) {
	if externalUID == "" {
		return nil, fmt.Errorf("subject has no enrolled destination for provider: %s", p.name)
	}
	return p.issue(ctx, model.ChallengeKindAuthenticate, subject, externalUID)
}

// CheckStatus reads the challenge from the local store. The status only moves
// off pending when the submitted code is verified or the deadline passes.
func (p *SMSOTPProvider) CheckStatus(_ context.Context,
	requestID string) (model.ChallengeStatus, error) {
	challenge, found := p.challengeStore.Get(requestID)
	if !found {
		return "", ErrUnknownRequest
	}
	if challenge.Status == model.ChallengeStatusPending && time.Now().After(challenge.ExpiresAt()) {
		return model.ChallengeStatusExpired, nil
	}
	return challenge.Status, nil
}

func (p *SMSOTPProvider) issue(_ context.Context, kind model.ChallengeKind, subject model.Subject,
	destination string) (*model.ChallengeRequest, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, smsOTPLoggerComponentName),
		log.String(log.LoggerKeyProviderName, p.name))

	code, err := generateOTP(otpLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	messageClient, err := p.messageClients.GetMessageClient(p.senderName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if err := messageClient.SendSMS(notification.SMSData{
		To:   destination,
		Body: fmt.Sprintf("Your verification code is %s", code),
	}); err != nil {
		logger.Error("Failed to send OTP message", log.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	challenge := &model.ChallengeRequest{
		RequestID:      utils.GenerateUUID(),
		Kind:           kind,
		Provider:       p.name,
		Subject:        subject,
		DeviceRef:      destination,
		Code:           code,
		IssuedAt:       time.Now(),
		TimeoutSeconds: p.timeoutSeconds,
		Status:         model.ChallengeStatusPending,
	}

	logger.Debug("OTP challenge issued", log.String(log.LoggerKeyChallengeID, challenge.RequestID),
		log.String("kind", string(kind)), log.String("destination", log.MaskString(destination)))
	return challenge, nil
}

// generateOTP returns a zero-padded numeric code of the given length.
func generateOTP(length int) (string, error) {
	maxValue := big.NewInt(1)
	for i := 0; i < length; i++ {
		maxValue.Mul(maxValue, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, maxValue)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

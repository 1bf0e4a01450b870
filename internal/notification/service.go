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
	"fmt"
	"sync"

	"github.com/asgardeo/stepauth/internal/system/config"
	"github.com/asgardeo/stepauth/internal/system/log"
)

const serviceLoggerComponentName = "MessageClientService"

// MessageClientServiceInterface defines the contract for resolving message clients by name.
type MessageClientServiceInterface interface {
	GetMessageClient(name string) (MessageClientInterface, error)
}

// messageClientService is the default implementation of MessageClientServiceInterface.
type messageClientService struct {
	mu      sync.RWMutex
	clients map[string]MessageClientInterface
}

var (
	instance *messageClientService
	once     sync.Once
)

// GetMessageClientService returns the singleton message client service.
func GetMessageClientService() MessageClientServiceInterface {
	once.Do(func() {
		instance = &messageClientService{
			clients: make(map[string]MessageClientInterface),
		}
	})
	return instance
}

// GetMessageClient returns the message client registered under the given name,
// constructing it from the deployment configuration on first use.
func (s *messageClientService) GetMessageClient(name string) (MessageClientInterface, error) {
	s.mu.RLock()
	if client, ok := s.clients[name]; ok {
		s.mu.RUnlock()
		return client, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if client, ok := s.clients[name]; ok {
		return client, nil
	}

	senderConfig := config.GetStepAuthRuntime().Config.GetMessageSender(name)
	if senderConfig == nil {
		return nil, fmt.Errorf("message sender not found: %s", name)
	}

	client, err := buildMessageClient(*senderConfig)
	if err != nil {
		return nil, err
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, serviceLoggerComponentName))
	logger.Debug("Initialized message client", log.String("name", name), log.String("type", senderConfig.Type))

	s.clients[name] = client
	return client, nil
}

// buildMessageClient constructs a message client for the given sender configuration.
func buildMessageClient(sender config.MessageSender) (MessageClientInterface, error) {
	switch sender.Type {
	case MessageSenderTypeTwilio:
		return NewTwilioClient(sender)
	case MessageSenderTypeCustom:
		return NewCustomClient(sender)
	default:
		return nil, fmt.Errorf("unsupported message sender type: %s", sender.Type)
	}
}

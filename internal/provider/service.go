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
	"fmt"
	"sync"

	"github.com/asgardeo/stepauth/internal/system/config"
	"github.com/asgardeo/stepauth/internal/system/log"
)

const registryLoggerComponentName = "ProviderService"

// ProviderServiceInterface defines the contract for resolving second-factor providers.
type ProviderServiceInterface interface {
	GetProvider(name string) (SecondFactorProviderInterface, error)
}

// providerService is the default implementation of ProviderServiceInterface.
type providerService struct {
	mu        sync.RWMutex
	providers map[string]SecondFactorProviderInterface
}

var (
	instance *providerService
	once     sync.Once
)

// GetProviderService returns the singleton provider service.
func GetProviderService() ProviderServiceInterface {
	once.Do(func() {
		instance = &providerService{
			providers: make(map[string]SecondFactorProviderInterface),
		}
	})
	return instance
}

// GetProvider returns the provider registered under the given name, constructing
// it from the deployment configuration on first use.
func (s *providerService) GetProvider(name string) (SecondFactorProviderInterface, error) {
	s.mu.RLock()
	if prov, ok := s.providers[name]; ok {
		s.mu.RUnlock()
		return prov, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if prov, ok := s.providers[name]; ok {
		return prov, nil
	}

	providerConfig := config.GetStepAuthRuntime().Config.GetProvider(name)
	if providerConfig == nil {
		return nil, fmt.Errorf("second-factor provider not found: %s", name)
	}

	prov, err := buildProvider(*providerConfig)
	if err != nil {
		return nil, err
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, registryLoggerComponentName))
	logger.Debug("Initialized second-factor provider", log.String(log.LoggerKeyProviderName, name),
		log.String("type", providerConfig.Type))

	s.providers[name] = prov
	return prov, nil
}

// buildProvider constructs a provider adapter for the given provider configuration.
func buildProvider(cfg config.Provider) (SecondFactorProviderInterface, error) {
	switch cfg.Type {
	case ProviderTypePush:
		return NewPushProvider(cfg)
	case ProviderTypeSMSOTP:
		return NewSMSOTPProvider(cfg, nil)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Type)
	}
}

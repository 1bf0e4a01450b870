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

// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"database/sql"
	"fmt"
	"path"
	"sync"

	"github.com/asgardeo/stepauth/internal/system/config"
	"github.com/asgardeo/stepauth/internal/system/database/client"
	dbmodel "github.com/asgardeo/stepauth/internal/system/database/model"
)

const (
	dataSourceTypePostgres = "postgres"
	dataSourceTypeSQLite   = "sqlite"
)

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBClient() (client.DBClientInterface, error)
}

// DBProvider is the implementation of DBProviderInterface.
type DBProvider struct {
	identityClient client.DBClientInterface
	identityMutex  sync.RWMutex
}

var (
	instance *DBProvider
	once     sync.Once
)

// GetDBProvider returns the singleton instance of DBProvider.
func GetDBProvider() DBProviderInterface {
	once.Do(func() {
		instance = &DBProvider{}
	})
	return instance
}

// GetDBClient returns the identity database client, initializing it on first use.
// The returned client manages its own connection pool and must not be closed by the caller.
func (d *DBProvider) GetDBClient() (client.DBClientInterface, error) {
	d.identityMutex.RLock()
	if d.identityClient != nil {
		dbClient := d.identityClient
		d.identityMutex.RUnlock()
		return dbClient, nil
	}
	d.identityMutex.RUnlock()

	d.identityMutex.Lock()
	defer d.identityMutex.Unlock()

	if d.identityClient != nil {
		return d.identityClient, nil
	}

	dataSource := config.GetStepAuthRuntime().Config.Database.Identity
	driverName, dsn, err := resolveDataSource(dataSource)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to identity database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping identity database: %w (close error: %w)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping identity database: %w", err)
	}

	// Enable foreign key constraints for SQLite databases.
	if driverName == dataSourceTypeSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				return nil, fmt.Errorf("failed to enable foreign key constraints: %w (close error: %w)",
					err, closeErr)
			}
			return nil, fmt.Errorf("failed to enable foreign key constraints: %w", err)
		}
	}

	d.identityClient = client.NewDBClient(dbmodel.NewDB(db), driverName)
	return d.identityClient, nil
}

// resolveDataSource builds the driver name and DSN for the given data source.
func resolveDataSource(dataSource config.DataSource) (string, string, error) {
	switch dataSource.Type {
	case dataSourceTypePostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			dataSource.Hostname, dataSource.Port, dataSource.Username, dataSource.Password,
			dataSource.Name, dataSource.SSLMode)
		return dataSourceTypePostgres, dsn, nil
	case dataSourceTypeSQLite:
		options := dataSource.Options
		if options != "" && options[0] != '?' {
			options = "?" + options
		}
		dsn := fmt.Sprintf("%s%s",
			path.Join(config.GetStepAuthRuntime().ServerHome, dataSource.Path), options)
		return dataSourceTypeSQLite, dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported data source type: %s", dataSource.Type)
	}
}

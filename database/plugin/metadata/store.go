// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/blinklabs-io/parlmembers/database/models"
	"github.com/blinklabs-io/parlmembers/database/plugin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// MetadataStore is the relational sink. Methods taking a *gorm.DB run
// inside that transaction, or directly against the store when it is nil.
type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	AutoMigrate(...any) error
	Transaction(func(txn *gorm.DB) error) error

	// Identity mappings
	GetPersonIDMappings(*gorm.DB) (map[int]uuid.UUID, error)
	GetConstituencyIDMappings(*gorm.DB) (map[int]uuid.UUID, error)
	AddPersonIDMappings(map[int]uuid.UUID, *gorm.DB) error
	AddConstituencyIDMappings(map[int]uuid.UUID, *gorm.DB) error

	// Entity tables
	ReplaceEntities(*models.Entities, *gorm.DB) error
	GetPeople(*gorm.DB) ([]models.Person, error)
	GetConstituencies(*gorm.DB) ([]models.Constituency, error)

	// State of the parties
	SetStateOfTheParties([]models.StateOfTheParty, *gorm.DB) error
	GetStateOfTheParties(
		int, // house
		time.Time, // from
		time.Time, // to
		*gorm.DB,
	) ([]models.StateOfTheParty, error)

	// Extraction runs
	SetExtractionRun(*models.ExtractionRun, *gorm.DB) error
	GetLatestExtractionRun(string, *gorm.DB) (*models.ExtractionRun, error)

	// Review workflow
	AddReviewTask(*models.ReviewTask, *gorm.DB) error
	GetReviewTask(uuid.UUID, *gorm.DB) (*models.ReviewTask, error)
}

// New returns the started metadata plugin selected by name
func New(
	pluginName string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	p, err := plugin.StartPlugin(
		plugin.PluginTypeMetadata,
		pluginName,
		logger,
		promRegistry,
	)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}

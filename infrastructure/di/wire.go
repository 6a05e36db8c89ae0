//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"medatlas-backend/application/commands/bus"
	"medatlas-backend/application/ports"
	querybus "medatlas-backend/application/queries/bus"
	"medatlas-backend/application/services"
	"medatlas-backend/infrastructure/config"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	GraphRepo  ports.GraphRepository
	EventBus   ports.EventBus
	Timeline   *services.TimelineService
	Evidence   *services.EvidenceService
	Alignment  *services.AlignmentService
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Cache      ports.Cache
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideGraphRepository,
	ProvideEventBus,
	ProvideTimelineService,
	ProvideEvidenceService,
	ProvideAlignmentService,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideInMemoryCache,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}

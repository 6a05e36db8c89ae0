package di

import (
	"context"

	"medatlas-backend/application/commands"
	"medatlas-backend/application/commands/bus"
	commandhandlers "medatlas-backend/application/commands/handlers"
	"medatlas-backend/application/ports"
	"medatlas-backend/application/queries"
	querybus "medatlas-backend/application/queries/bus"
	queryhandlers "medatlas-backend/application/queries/handlers"
	"medatlas-backend/application/services"
	"medatlas-backend/infrastructure/config"
	"medatlas-backend/infrastructure/messaging/eventbridge"
	dynamorepo "medatlas-backend/infrastructure/persistence/dynamodb"
	"medatlas-backend/infrastructure/persistence/memory"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if cfg.StorageBackend != config.StorageDynamoDB && cfg.EventBusName == "" {
		// Nothing uses AWS; skip credential resolution entirely.
		return aws.Config{}, nil
	}
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideGraphRepository selects the graph store for the configured
// backend.
func ProvideGraphRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.GraphRepository {
	if cfg.StorageBackend == config.StorageDynamoDB {
		return dynamorepo.NewGraphRepository(client, cfg.DynamoDBTable, logger)
	}
	return memory.NewGraphRepository(logger)
}

// ProvideEventBus creates an event bus. Development runs without a bus.
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	if cfg.IsDevelopment() {
		return eventbridge.NewNoopPublisher()
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideTimelineService creates the timeline projector
func ProvideTimelineService(logger *zap.Logger) *services.TimelineService {
	return services.NewTimelineService(logger)
}

// ProvideEvidenceService creates the evidence chain builder
func ProvideEvidenceService(logger *zap.Logger) *services.EvidenceService {
	return services.NewEvidenceService(logger)
}

// ProvideAlignmentService creates the cross-modal matcher
func ProvideAlignmentService(logger *zap.Logger) *services.AlignmentService {
	return services.NewAlignmentService(logger)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	graphRepo ports.GraphRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()

	graphHandler := commandhandlers.NewGraphCommandHandler(graphRepo, eventBus, logger)
	nodeHandler := commandhandlers.NewNodeCommandHandler(graphRepo, eventBus, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateGraphCommand{}, graphHandler},
		{commands.DeleteGraphCommand{}, graphHandler},
		{commands.ImportGraphCommand{}, graphHandler},
		{commands.UpsertNodeCommand{}, nodeHandler},
		{commands.CreateEdgeCommand{}, nodeHandler},
		{commands.DeleteNodeCommand{}, nodeHandler},
		{commands.DeleteEdgeCommand{}, nodeHandler},
	}
	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, reg.handler); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	graphRepo ports.GraphRepository,
	timeline *services.TimelineService,
	evidence *services.EvidenceService,
	alignment *services.AlignmentService,
	cache ports.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	graphHandler := queryhandlers.NewGraphQueryHandler(graphRepo, logger)
	nodeHandler := queryhandlers.NewNodeQueryHandler(graphRepo, logger)
	projectionHandler := queryhandlers.NewProjectionQueryHandler(graphRepo, timeline, evidence, alignment, logger)

	var caching *querybus.CachingMiddleware
	if cfg.QueryCacheTTL > 0 {
		caching = querybus.NewCachingMiddleware(cache, cfg.QueryCacheTTL)
	}
	wrap := func(h querybus.QueryHandler) querybus.QueryHandler {
		if caching == nil {
			return h
		}
		return caching.Wrap(h)
	}

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetGraphDataQuery{}, graphHandler},
		{queries.ListGraphsQuery{}, graphHandler},
		{queries.GetGraphStatsQuery{}, graphHandler},
		{queries.GetNodeQuery{}, nodeHandler},
		{queries.QueryNodesQuery{}, nodeHandler},
		{queries.QueryEdgesQuery{}, nodeHandler},
		{queries.GetNodeEdgesQuery{}, nodeHandler},
		{queries.TraverseQuery{}, nodeHandler},
		{queries.GetTimelineQuery{}, wrap(projectionHandler)},
		{queries.GetEvidenceChainQuery{}, wrap(projectionHandler)},
		{queries.GetSourceArtifactsQuery{}, wrap(projectionHandler)},
		{queries.GetMergedEvidenceChainQuery{}, wrap(projectionHandler)},
		{queries.GetAlignmentsQuery{}, wrap(projectionHandler)},
	}
	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}

// ProvideInMemoryCache creates the query cache
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}

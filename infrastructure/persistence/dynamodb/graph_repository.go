package dynamodb

import (
	"context"
	"encoding/json"
	"time"

	"medatlas-backend/application/ports"
	"medatlas-backend/domain/core/aggregates"
	pkgerrors "medatlas-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	graphKeyPrefix = "GRAPH#"
	snapshotSK     = "SNAPSHOT"
	entityType     = "GRAPH_SNAPSHOT"
)

// GraphRepository persists graphs in DynamoDB, one snapshot item per
// graph. The whole serialized graph is stored as a JSON document
// attribute; writes replace the item, so the last writer wins.
type GraphRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewGraphRepository creates a new GraphRepository
func NewGraphRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *GraphRepository {
	return &GraphRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.GraphRepository = (*GraphRepository)(nil)

// graphItem represents the DynamoDB item structure for a graph snapshot
type graphItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	GraphID    string `dynamodbav:"GraphID"`
	NodeCount  int    `dynamodbav:"NodeCount"`
	EdgeCount  int    `dynamodbav:"EdgeCount"`
	Snapshot   string `dynamodbav:"Snapshot"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// Save persists a graph snapshot to DynamoDB
func (r *GraphRepository) Save(ctx context.Context, graph *aggregates.Graph) error {
	data := graph.Serialize()

	snapshot, err := json.Marshal(data)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode graph snapshot")
	}

	item := graphItem{
		PK:         graphKeyPrefix + graph.ID(),
		SK:         snapshotSK,
		EntityType: entityType,
		GraphID:    graph.ID(),
		NodeCount:  data.Metadata.NodeCount,
		EdgeCount:  data.Metadata.EdgeCount,
		Snapshot:   string(snapshot),
		CreatedAt:  graph.CreatedAt().Format(time.RFC3339),
		UpdatedAt:  graph.UpdatedAt().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal graph item")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("put graph snapshot", err)
	}

	r.logger.Debug("graph snapshot stored",
		zap.String("graphId", graph.ID()),
		zap.Int("nodeCount", item.NodeCount),
		zap.Int("edgeCount", item.EdgeCount),
	)
	return nil
}

// FindByID loads a graph snapshot from DynamoDB
func (r *GraphRepository) FindByID(ctx context.Context, graphID string) (*aggregates.Graph, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       graphKey(graphID),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get graph snapshot", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("graph")
	}

	var item graphItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal graph item")
	}

	var data aggregates.GraphData
	if err := json.Unmarshal([]byte(item.Snapshot), &data); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to decode graph snapshot")
	}
	return aggregates.FromData(&data)
}

// Delete removes a graph snapshot and reports whether one existed
func (r *GraphRepository) Delete(ctx context.Context, graphID string) (bool, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          graphKey(graphID),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, pkgerrors.NewDatabaseError("delete graph snapshot", err)
	}
	return len(out.Attributes) > 0, nil
}

// List returns the ids of all stored graphs
func (r *GraphRepository) List(ctx context.Context) ([]string, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityType))
	proj := expression.NamesList(expression.Name("GraphID"))
	expr, err := expression.NewBuilder().WithFilter(filter).WithProjection(proj).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build list expression")
	}

	var ids []string
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan graphs", err)
		}

		for _, raw := range out.Items {
			var item struct {
				GraphID string `dynamodbav:"GraphID"`
			}
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.Wrap(err, "failed to unmarshal graph id")
			}
			ids = append(ids, item.GraphID)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return ids, nil
}

// Exists reports whether a graph snapshot is stored under the id
func (r *GraphRepository) Exists(ctx context.Context, graphID string) (bool, error) {
	proj := expression.NamesList(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to build exists expression")
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      graphKey(graphID),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return false, pkgerrors.NewDatabaseError("get graph key", err)
	}
	return out.Item != nil, nil
}

func graphKey(graphID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: graphKeyPrefix + graphID},
		"SK": &types.AttributeValueMemberS{Value: snapshotSK},
	}
}

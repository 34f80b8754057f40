package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/trip-planner-nosql/internal/domain"
)

// TripRepo provides typed DynamoDB operations for the trips table.
type TripRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTripRepo(client *dynamodb.Client, tableName string) *TripRepo {
	return &TripRepo{client: client, tableName: tableName}
}

// Put writes the whole trip document, creating or replacing it.
func (r *TripRepo) Put(ctx context.Context, t *domain.Trip) error {
	t.ParticipantIDs = participantIDs(t)
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal trip: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *TripRepo) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("trip_id", tripID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("trip not found: %w", domain.ErrNotFound)
	}
	var t domain.Trip
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TripRepo) ListByCreator(ctx context.Context, userID string) ([]domain.Trip, error) {
	var trips []domain.Trip
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexCreatedBy),
		KeyConditionExpression: aws.String("created_by = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Trip
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		trips = append(trips, page...)
	}
	return trips, nil
}

// ListByParticipant scans for trips whose participant set contains userID.
func (r *TripRepo) ListByParticipant(ctx context.Context, userID string) ([]domain.Trip, error) {
	var trips []domain.Trip
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("contains(#p, :uid)"),
		ExpressionAttributeNames: map[string]string{"#p": fieldParticipantIDs},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Trip
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		trips = append(trips, page...)
	}
	return trips, nil
}

// participantIDs collects the distinct user ids listed in t.Peoples.
func participantIDs(t *domain.Trip) []string {
	seen := make(map[string]bool, len(t.Peoples))
	var ids []string
	for _, p := range t.Peoples {
		if p.UserID == "" || seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		ids = append(ids, p.UserID)
	}
	return ids
}

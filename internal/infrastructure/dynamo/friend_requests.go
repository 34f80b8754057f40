package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/trip-planner-nosql/internal/domain"
)

// FriendRequestRepo provides typed DynamoDB operations for the friend_requests table.
type FriendRequestRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewFriendRequestRepo(client *dynamodb.Client, tableName string) *FriendRequestRepo {
	return &FriendRequestRepo{client: client, tableName: tableName}
}

func (r *FriendRequestRepo) Put(ctx context.Context, fr *domain.FriendRequest) error {
	item, err := attributevalue.MarshalMap(fr)
	if err != nil {
		return fmt.Errorf("marshal friend request: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *FriendRequestRepo) Get(ctx context.Context, requestID string) (*domain.FriendRequest, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("request_id", requestID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("friend request not found: %w", domain.ErrNotFound)
	}
	var fr domain.FriendRequest
	if err := attributevalue.UnmarshalMap(out.Item, &fr); err != nil {
		return nil, err
	}
	return &fr, nil
}

// ListBetween returns every request sent by partyA to partyB.
func (r *FriendRequestRepo) ListBetween(ctx context.Context, partyA, partyB string) ([]domain.FriendRequest, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexPartyA),
		KeyConditionExpression: aws.String("party_a = :a"),
		FilterExpression:       aws.String("party_b = :b"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: partyA},
			":b": &types.AttributeValueMemberS{Value: partyB},
		},
	})
}

// ListReceived returns requests addressed to partyB with the given status.
func (r *FriendRequestRepo) ListReceived(ctx context.Context, partyB, status string) ([]domain.FriendRequest, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(indexPartyB),
		KeyConditionExpression:   aws.String("party_b = :b"),
		FilterExpression:         aws.String("#s = :s"),
		ExpressionAttributeNames: map[string]string{"#s": fieldStatus},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":b": &types.AttributeValueMemberS{Value: partyB},
			":s": &types.AttributeValueMemberS{Value: status},
		},
	})
}

// UpdateStatus moves a request from one status to another. A request no
// longer in status from yields ErrConflict.
func (r *FriendRequestRepo) UpdateStatus(ctx context.Context, requestID, from, to string) (*domain.FriendRequest, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldStatus:    to,
		fieldUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	ue.Names["#cur"] = fieldStatus
	ue.Values[":from"] = &types.AttributeValueMemberS{Value: from}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("request_id", requestID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("#cur = :from"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return nil, fmt.Errorf("friend request is no longer %s: %w", from, domain.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	var fr domain.FriendRequest
	if err := attributevalue.UnmarshalMap(out.Attributes, &fr); err != nil {
		return nil, err
	}
	return &fr, nil
}

func (r *FriendRequestRepo) query(ctx context.Context, input *dynamodb.QueryInput) ([]domain.FriendRequest, error) {
	var requests []domain.FriendRequest
	p := dynamodb.NewQueryPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.FriendRequest
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		requests = append(requests, page...)
	}
	return requests, nil
}

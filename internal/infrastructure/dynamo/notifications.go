package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/trip-planner-nosql/internal/domain"
)

// NotificationRepo provides typed DynamoDB operations for the notifications table.
// "read" is a reserved word, so it is always addressed through #r.
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(notification_id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("notification %s exists: %w", n.NotificationID, domain.ErrConflict)
	}
	return err
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByUser queries the user_id-created_at GSI, newest first. With onlyRead
// set, unread notifications are filtered out.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, onlyRead bool) ([]domain.Notification, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexUserNewestFirst),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ScanIndexForward:       aws.Bool(false),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	}
	if onlyRead {
		input.FilterExpression = aws.String("#r = :t")
		input.ExpressionAttributeNames = map[string]string{"#r": fieldRead}
		input.ExpressionAttributeValues[":t"] = &types.AttributeValueMemberBOOL{Value: true}
	}

	var notifications []domain.Notification
	p := dynamodb.NewQueryPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		notifications = append(notifications, page...)
	}
	// created_at strings do not sort exactly by time when sub-second
	// precision varies.
	sortNewestFirst(notifications)
	return notifications, nil
}

// SetRead changes read from one value to another on a notification owned by
// userID. A failed condition yields ErrConflict.
func (r *NotificationRepo) SetRead(ctx context.Context, userID, notificationID string, from, to bool) (*domain.Notification, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("notification_id", notificationID),
		UpdateExpression:         aws.String("SET #r = :to"),
		ConditionExpression:      aws.String("user_id = :uid AND #r = :from"),
		ExpressionAttributeNames: map[string]string{"#r": fieldRead},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid":  &types.AttributeValueMemberS{Value: userID},
			":from": &types.AttributeValueMemberBOOL{Value: from},
			":to":   &types.AttributeValueMemberBOOL{Value: to},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return nil, fmt.Errorf("notification changed concurrently: %w", domain.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Attributes, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// SetAllRead sets read on every notification of userID not already in that
// state and returns how many were changed.
func (r *NotificationRepo) SetAllRead(ctx context.Context, userID string, read bool) (int, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(indexUserNewestFirst),
		KeyConditionExpression:   aws.String("user_id = :uid"),
		FilterExpression:         aws.String("#r <> :v"),
		ProjectionExpression:     aws.String("notification_id"),
		ExpressionAttributeNames: map[string]string{"#r": fieldRead},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":v":   &types.AttributeValueMemberBOOL{Value: read},
		},
	})
	updated := 0
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return updated, err
		}
		for _, item := range out.Items {
			idAttr, ok := item["notification_id"].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			_, err := r.SetRead(ctx, userID, idAttr.Value, !read, read)
			if isConflict(err) {
				continue
			}
			if err != nil {
				return updated, err
			}
			updated++
		}
	}
	return updated, nil
}

func sortNewestFirst(ns []domain.Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
}

package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/trip-planner-nosql/internal/domain"
)

// RevokedTokenRepo stores logged-out bearer tokens. DynamoDB TTL on
// expires_at prunes them; reads also compare against the clock because TTL
// deletion lags.
type RevokedTokenRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRevokedTokenRepo(client *dynamodb.Client, tableName string) *RevokedTokenRepo {
	return &RevokedTokenRepo{client: client, tableName: tableName}
}

func (r *RevokedTokenRepo) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	now := time.Now().UTC()
	if !expiresAt.After(now) {
		return nil
	}
	item, err := attributevalue.MarshalMap(newRevokedToken(token, expiresAt, now))
	if err != nil {
		return fmt.Errorf("marshal revoked token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *RevokedTokenRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldToken, token),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, err
	}
	if out.Item == nil {
		return false, nil
	}
	var rt domain.RevokedToken
	if err := attributevalue.UnmarshalMap(out.Item, &rt); err != nil {
		return false, err
	}
	return rt.TTL > time.Now().Unix(), nil
}

func newRevokedToken(token string, expiresAt, now time.Time) *domain.RevokedToken {
	return &domain.RevokedToken{
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		TTL:       expiresAt.Unix(),
		RevokedAt: now,
	}
}

package items

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"foundlink/lost-found-portal/portal-backend/pkg/lifecycle"
)

type Repository interface {
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, itemID string) (*Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	ListByUploader(ctx context.Context, userID string) ([]Item, error)
	ListByClaimant(ctx context.Context, userID string) ([]Item, error)

	PutCode(ctx context.Context, code *VerificationCode) error
	GetCode(ctx context.Context, code string) (*VerificationCode, error)

	// ClaimItem atomically moves an active item to pending_handover for the
	// claimant. ConfirmHandover atomically moves a pending_handover item owned
	// by uploaderID to handed_over. Both return ErrConditionFailed when the
	// stored state did not match, making at-most-one-winner a storage guarantee.
	ClaimItem(ctx context.Context, itemID, claimantID string) (*Item, error)
	ConfirmHandover(ctx context.Context, itemID, uploaderID string) (*Item, error)
}

type dynamoRepository struct {
	db         *dynamodb.Client
	itemsTable string
	codesTable string
}

func NewRepository(db *dynamodb.Client, itemsTable, codesTable string) Repository {
	return &dynamoRepository{db: db, itemsTable: itemsTable, codesTable: codesTable}
}

func (r *dynamoRepository) CreateItem(ctx context.Context, item *Item) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.itemsTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(itemId)"),
	})
	if isConditionalCheckFailed(err) {
		return ErrDuplicateItem
	}
	return err
}

func (r *dynamoRepository) GetItem(ctx context.Context, itemID string) (*Item, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.itemsTable),
		Key: map[string]types.AttributeValue{
			"itemId": &types.AttributeValueMemberS{Value: itemID},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var item Item
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *dynamoRepository) ListItems(ctx context.Context) ([]Item, error) {
	return r.scanItems(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.itemsTable),
	})
}

func (r *dynamoRepository) ListByUploader(ctx context.Context, userID string) ([]Item, error) {
	return r.scanItems(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.itemsTable),
		FilterExpression: aws.String("uploaderId = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
	})
}

func (r *dynamoRepository) ListByClaimant(ctx context.Context, userID string) ([]Item, error) {
	return r.scanItems(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.itemsTable),
		FilterExpression: aws.String("claimedByUserId = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
	})
}

func (r *dynamoRepository) scanItems(ctx context.Context, input *dynamodb.ScanInput) ([]Item, error) {
	var result []Item
	paginator := dynamodb.NewScanPaginator(r.db, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []Item
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		result = append(result, items...)
	}
	return result, nil
}

func (r *dynamoRepository) PutCode(ctx context.Context, code *VerificationCode) error {
	av, err := attributevalue.MarshalMap(code)
	if err != nil {
		return err
	}
	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.codesTable),
		Item:      av,
	})
	return err
}

func (r *dynamoRepository) GetCode(ctx context.Context, code string) (*VerificationCode, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.codesTable),
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: code},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var vc VerificationCode
	if err := attributevalue.UnmarshalMap(out.Item, &vc); err != nil {
		return nil, err
	}
	// The TTL sweep is eventually consistent; treat an expired row as gone.
	if vc.ExpiresAt > 0 && vc.ExpiresAt < time.Now().Unix() {
		return nil, nil
	}
	return &vc, nil
}

func (r *dynamoRepository) ClaimItem(ctx context.Context, itemID, claimantID string) (*Item, error) {
	return r.conditionalUpdate(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.itemsTable),
		Key: map[string]types.AttributeValue{
			"itemId": &types.AttributeValueMemberS{Value: itemID},
		},
		UpdateExpression:    aws.String("SET #s = :pending, claimedByUserId = :claimant"),
		ConditionExpression: aws.String("attribute_exists(itemId) AND #s = :active"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":active":   &types.AttributeValueMemberS{Value: string(lifecycle.StatusActive)},
			":pending":  &types.AttributeValueMemberS{Value: string(lifecycle.StatusPendingHandover)},
			":claimant": &types.AttributeValueMemberS{Value: claimantID},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
}

func (r *dynamoRepository) ConfirmHandover(ctx context.Context, itemID, uploaderID string) (*Item, error) {
	return r.conditionalUpdate(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.itemsTable),
		Key: map[string]types.AttributeValue{
			"itemId": &types.AttributeValueMemberS{Value: itemID},
		},
		UpdateExpression:    aws.String("SET #s = :handed"),
		ConditionExpression: aws.String("attribute_exists(itemId) AND #s = :pending AND uploaderId = :uploader"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending":  &types.AttributeValueMemberS{Value: string(lifecycle.StatusPendingHandover)},
			":handed":   &types.AttributeValueMemberS{Value: string(lifecycle.StatusHandedOver)},
			":uploader": &types.AttributeValueMemberS{Value: uploaderID},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
}

func (r *dynamoRepository) conditionalUpdate(ctx context.Context, input *dynamodb.UpdateItemInput) (*Item, error) {
	out, err := r.db.UpdateItem(ctx, input)
	if isConditionalCheckFailed(err) {
		return nil, ErrConditionFailed
	}
	if err != nil {
		return nil, err
	}
	var item Item
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
)

// DynamoAPI is the subset of the DynamoDB client the recorder uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoRecorder stores forecasts keyed by symbol (hash) and generated_at (range).
type DynamoRecorder struct {
	client DynamoAPI
	table  string
}

// dynamoItem is the stored item. generated_at is RFC3339 with milliseconds so
// it sorts lexically.
type dynamoItem struct {
	Symbol      string   `dynamodbav:"symbol"`
	GeneratedAt string   `dynamodbav:"generated_at"`
	Period      string   `dynamodbav:"period"`
	Steps       int      `dynamodbav:"steps"`
	Prediction  *float64 `dynamodbav:"prediction,omitempty"`
	Display     string   `dynamodbav:"display,omitempty"`
	Reason      string   `dynamodbav:"reason,omitempty"`
	Detail      string   `dynamodbav:"detail,omitempty"`
	Stage       string   `dynamodbav:"stage"`
	Observed    int      `dynamodbav:"observed"`
	LastClose   float64  `dynamodbav:"last_close"`
	AsOf        string   `dynamodbav:"as_of,omitempty"`
	Source      string   `dynamodbav:"source,omitempty"`
	Model       string   `dynamodbav:"model,omitempty"`
}

const dynamoTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// NewDynamoRecorder loads the default AWS config, optionally pinned to region.
func NewDynamoRecorder(ctx context.Context, region, table string) (*DynamoRecorder, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewDynamoRecorderWithClient(dynamodb.NewFromConfig(cfg), table), nil
}

func NewDynamoRecorderWithClient(client DynamoAPI, table string) *DynamoRecorder {
	return &DynamoRecorder{client: client, table: table}
}

func (r *DynamoRecorder) Name() string { return "dynamodb" }

func (r *DynamoRecorder) Record(ctx context.Context, f *models.Forecast) error {
	it := dynamoItem{
		Symbol:      f.Symbol,
		GeneratedAt: f.GeneratedAt.UTC().Format(dynamoTimeLayout),
		Period:      f.Period,
		Steps:       f.Steps,
		Prediction:  f.Value,
		Display:     f.Display,
		Reason:      f.Reason,
		Detail:      f.Detail,
		Stage:       string(f.Stage),
		Observed:    f.Observed,
		LastClose:   f.LastClose,
		Source:      f.Source,
		Model:       f.Model,
	}
	if f.AsOf != nil {
		it.AsOf = f.AsOf.UTC().Format(dynamoTimeLayout)
	}

	item, err := attributevalue.MarshalMap(it)
	if err != nil {
		return fmt.Errorf("marshal forecast: %w", err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put forecast: %w", err)
	}
	return nil
}

// Recent queries the newest forecasts for symbol, newest first.
func (r *DynamoRecorder) Recent(ctx context.Context, symbol string, limit int) ([]*models.Forecast, error) {
	if limit <= 0 {
		limit = 20
	}
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("symbol = :s"),
		ExpressionAttributeValues: map[string]dynamotypes.AttributeValue{
			":s": &dynamotypes.AttributeValueMemberS{Value: strings.ToUpper(symbol)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("query forecasts: %w", err)
	}

	var items []dynamoItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal forecasts: %w", err)
	}

	forecasts := make([]*models.Forecast, 0, len(items))
	for _, it := range items {
		f := &models.Forecast{
			Symbol:    it.Symbol,
			Period:    it.Period,
			Steps:     it.Steps,
			Reason:    it.Reason,
			Detail:    it.Detail,
			Stage:     models.Stage(it.Stage),
			Observed:  it.Observed,
			LastClose: it.LastClose,
			Source:    it.Source,
			Model:     it.Model,
		}
		f.GeneratedAt, _ = time.Parse(dynamoTimeLayout, it.GeneratedAt)
		if it.AsOf != "" {
			if asOf, err := time.Parse(dynamoTimeLayout, it.AsOf); err == nil {
				f.AsOf = &asOf
			}
		}
		if it.Prediction != nil {
			f.SetValue(*it.Prediction)
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, nil
}

func (r *DynamoRecorder) Close() error { return nil }

var _ domrepo.ForecastRecorder = (*DynamoRecorder)(nil)

// Package mongo provides the MongoDB implementation of the flow recorder.
// The money_flows collection is an analytics side channel: writes are
// best-effort and callers never let a failure here affect a transfer.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/interbank-transfer-saga/internal/domain/flow"
)

const (
	// FlowCollectionName is the name of the money flow collection in MongoDB
	FlowCollectionName = "money_flows"
)

// flowDocument is the BSON shape of a recorded flow. Amounts are stored as
// Decimal128 so aggregation pipelines can sum them without precision loss.
type flowDocument struct {
	TransactionID uuid.UUID            `bson:"transaction_id"`
	SourceID      uuid.UUID            `bson:"source_id"`
	DestinationID uuid.UUID            `bson:"destination_id"`
	Amount        primitive.Decimal128 `bson:"amount"`
	Description   string               `bson:"description"`
	CompletedAt   time.Time            `bson:"completed_at"`
}

// counterpartyDocument is the aggregation result shape for TotalsByCounterparty
type counterpartyDocument struct {
	CounterpartyID uuid.UUID            `bson:"_id"`
	Sent           primitive.Decimal128 `bson:"sent"`
	Received       primitive.Decimal128 `bson:"received"`
	Transfers      int64                `bson:"transfers"`
}

// FlowRecorder implements the flow.Recorder interface for MongoDB
type FlowRecorder struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewFlowRecorder creates a new MongoDB flow recorder
func NewFlowRecorder(logger *slog.Logger, db *mongo.Database) flow.Recorder {
	return &FlowRecorder{
		db:     db,
		logger: logger,
	}
}

// Record stores a completed transfer. Recording is idempotent per transaction:
// a flow already present for the transaction ID is left untouched.
func (r *FlowRecorder) Record(ctx context.Context, f *flow.Flow) error {
	collection := r.db.Collection(FlowCollectionName)

	doc, err := toDocument(f)
	if err != nil {
		return err
	}

	filter := bson.M{"transaction_id": f.TransactionID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to check for existing flow",
			"transaction_id", f.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing flow: %w", err)
	}
	if count > 0 {
		r.logger.Debug("Flow already recorded", "transaction_id", f.TransactionID.String())
		return nil
	}

	if _, err := collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to record flow",
			"transaction_id", f.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to record flow: %w", err)
	}

	return nil
}

// GetByAccount retrieves paginated flows where the account is either side,
// newest first.
func (r *FlowRecorder) GetByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*flow.Flow, error) {
	collection := r.db.Collection(FlowCollectionName)

	filter := bson.M{"$or": bson.A{
		bson.M{"source_id": accountID},
		bson.M{"destination_id": accountID},
	}}

	cursor, err := collection.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: filter}},
		bson.D{{Key: "$sort", Value: bson.M{"completed_at": -1}}},
		bson.D{{Key: "$skip", Value: int64(offset)}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
	})
	if err != nil {
		r.logger.Error("Failed to get flows",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get flows: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []flowDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode flows",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode flows: %w", err)
	}

	flows := make([]*flow.Flow, 0, len(docs))
	for i := range docs {
		f, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}

	return flows, nil
}

// TotalsByCounterparty aggregates sent and received volume between the account
// and each of its counterparties.
func (r *FlowRecorder) TotalsByCounterparty(ctx context.Context, accountID uuid.UUID) ([]*flow.CounterpartyTotal, error) {
	collection := r.db.Collection(FlowCollectionName)

	zero, _ := primitive.ParseDecimal128("0")
	isOutgoing := bson.M{"$eq": bson.A{"$source_id", accountID}}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"source_id": accountID},
			bson.M{"destination_id": accountID},
		}}}},
		bson.D{{Key: "$project", Value: bson.M{
			"counterparty": bson.M{"$cond": bson.A{isOutgoing, "$destination_id", "$source_id"}},
			"sent":         bson.M{"$cond": bson.A{isOutgoing, "$amount", zero}},
			"received":     bson.M{"$cond": bson.A{isOutgoing, zero, "$amount"}},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":       "$counterparty",
			"sent":      bson.M{"$sum": "$sent"},
			"received":  bson.M{"$sum": "$received"},
			"transfers": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate counterparty totals",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to aggregate counterparty totals: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []counterpartyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode counterparty totals",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode counterparty totals: %w", err)
	}

	totals := make([]*flow.CounterpartyTotal, 0, len(docs))
	for _, doc := range docs {
		sent, err := decimal.NewFromString(doc.Sent.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse sent total: %w", err)
		}
		received, err := decimal.NewFromString(doc.Received.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse received total: %w", err)
		}
		totals = append(totals, &flow.CounterpartyTotal{
			CounterpartyID: doc.CounterpartyID,
			Sent:           sent,
			Received:       received,
			Transfers:      doc.Transfers,
		})
	}

	return totals, nil
}

func toDocument(f *flow.Flow) (*flowDocument, error) {
	amount, err := primitive.ParseDecimal128(f.Amount.String())
	if err != nil {
		return nil, errors.New("flow amount is not a valid decimal: " + f.Amount.String())
	}
	return &flowDocument{
		TransactionID: f.TransactionID,
		SourceID:      f.SourceID,
		DestinationID: f.DestinationID,
		Amount:        amount,
		Description:   f.Description,
		CompletedAt:   f.CompletedAt,
	}, nil
}

func fromDocument(doc *flowDocument) (*flow.Flow, error) {
	amount, err := decimal.NewFromString(doc.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse flow amount: %w", err)
	}
	return &flow.Flow{
		TransactionID: doc.TransactionID,
		SourceID:      doc.SourceID,
		DestinationID: doc.DestinationID,
		Amount:        amount,
		Description:   doc.Description,
		CompletedAt:   doc.CompletedAt,
	}, nil
}

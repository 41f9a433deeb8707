package mongodb

import (
	"context"
	"fmt"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionEmails = "emails"

// EmailAdapter implements out.EmailRepository using MongoDB.
type EmailAdapter struct {
	collection *mongo.Collection
}

// NewEmailAdapter creates a new MongoDB email record adapter.
func NewEmailAdapter(db *mongo.Database) *EmailAdapter {
	return &EmailAdapter{
		collection: db.Collection(collectionEmails),
	}
}

// EnsureIndexes creates the indexes backing the triage queries.
func (a *EmailAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "received_date", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "flag", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "discard", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// emailDocument is the MongoDB document structure.
type emailDocument struct {
	DocID       string     `bson:"_id"`
	UserID      string     `bson:"user_id"`
	MessageID   string     `bson:"message_id"`
	ThreadID    string     `bson:"thread_id"`
	Sender      string     `bson:"sender"`
	Subject     string     `bson:"subject"`
	Snippet     string     `bson:"snippet"`
	Body        string     `bson:"body"`
	ReceivedAt  time.Time  `bson:"received_date"`
	IsImportant bool       `bson:"is_important"`
	Labels      string     `bson:"labels"`
	CreatedAt   time.Time  `bson:"created_at"`
	Summary     string     `bson:"summary"`
	Action      string     `bson:"action"`
	IsRead      bool       `bson:"is_read"`
	Flag        bool       `bson:"flag"`
	Discard     bool       `bson:"discard"`
	ProcessedAt *time.Time `bson:"processed_at,omitempty"`
	ActionType  string     `bson:"action_type,omitempty"`
	FlaggedAt   *time.Time `bson:"flagged_at,omitempty"`
}

// upsertModelFor splits a record into merge-upsert form: provider data and
// the summary/action pair always win, triage state is written only on
// first insert so a re-ingested message keeps its swipes.
func upsertModelFor(record *domain.EmailRecord, now time.Time) (filter bson.M, update bson.M) {
	filter = bson.M{"_id": record.DocID()}
	update = bson.M{
		"$set": bson.M{
			"user_id":       record.UserID,
			"message_id":    record.MessageID,
			"thread_id":     record.ThreadID,
			"sender":        record.Sender,
			"subject":       record.Subject,
			"snippet":       record.Snippet,
			"body":          record.Body,
			"received_date": record.ReceivedAt,
			"is_important":  record.IsImportant,
			"labels":        record.Labels,
			"summary":       record.Summary,
			"action":        record.Action,
		},
		"$setOnInsert": bson.M{
			"is_read":    record.IsRead,
			"flag":       false,
			"discard":    false,
			"created_at": now,
		},
	}
	return filter, update
}

// UpsertBatch writes records in one unordered bulk write keyed by DocID.
func (a *EmailAdapter) UpsertBatch(ctx context.Context, records []*domain.EmailRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := time.Now()
	models := make([]mongo.WriteModel, 0, len(records))
	for _, record := range records {
		filter, update := upsertModelFor(record, now)
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(update).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := a.collection.BulkWrite(ctx, models, opts); err != nil {
		return 0, fmt.Errorf("failed to upsert email records: %w", err)
	}

	return len(records), nil
}

func recentFilter(userID string, cutoff time.Time) bson.M {
	return bson.M{
		"user_id":       userID,
		"received_date": bson.M{"$gte": cutoff},
		"is_read":       false,
		"discard":       false,
	}
}

// FindRecent returns pending records in the window, newest first.
func (a *EmailAdapter) FindRecent(ctx context.Context, userID string, window time.Duration) ([]*domain.EmailRecord, error) {
	return a.find(ctx, recentFilter(userID, time.Now().Add(-window)))
}

// FindFlagged returns flagged, non-discarded records, newest first.
func (a *EmailAdapter) FindFlagged(ctx context.Context, userID string) ([]*domain.EmailRecord, error) {
	return a.find(ctx, bson.M{
		"user_id": userID,
		"flag":    true,
		"discard": false,
	})
}

// FindDiscarded returns discarded records, newest first.
func (a *EmailAdapter) FindDiscarded(ctx context.Context, userID string) ([]*domain.EmailRecord, error) {
	return a.find(ctx, bson.M{
		"user_id": userID,
		"discard": true,
	})
}

// ListByUser returns every stored record for the user.
func (a *EmailAdapter) ListByUser(ctx context.Context, userID string) ([]*domain.EmailRecord, error) {
	return a.find(ctx, bson.M{"user_id": userID})
}

func (a *EmailAdapter) find(ctx context.Context, filter bson.M) ([]*domain.EmailRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "received_date", Value: -1}})
	cursor, err := a.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query email records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*domain.EmailRecord
	for cursor.Next(ctx) {
		var doc emailDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode email record: %w", err)
		}
		records = append(records, toRecord(&doc))
	}
	return records, cursor.Err()
}

// MarkRead sets the read flag (swipe right).
func (a *EmailAdapter) MarkRead(ctx context.Context, docID string) error {
	return a.stampAction(ctx, docID, bson.M{"is_read": true}, domain.ActionTypeRead)
}

// MarkDiscard sets the discard flag (swipe left).
func (a *EmailAdapter) MarkDiscard(ctx context.Context, docID string) error {
	return a.stampAction(ctx, docID, bson.M{"discard": true}, domain.ActionTypeDiscard)
}

func (a *EmailAdapter) stampAction(ctx context.Context, docID string, fields bson.M, actionType string) error {
	fields["processed_at"] = time.Now()
	fields["action_type"] = actionType

	result, err := a.collection.UpdateByID(ctx, docID, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update email record %s: %w", docID, err)
	}
	if result.MatchedCount == 0 {
		return out.ErrRecordNotFound
	}
	return nil
}

// ToggleFlag negates the flag and returns the new state. Read-then-write
// with no transaction: concurrent toggles are last-writer-wins.
func (a *EmailAdapter) ToggleFlag(ctx context.Context, docID string) (bool, error) {
	var doc emailDocument
	err := a.collection.FindOne(ctx, bson.M{"_id": docID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, out.ErrRecordNotFound
		}
		return false, fmt.Errorf("failed to read email record %s: %w", docID, err)
	}

	newFlag := !doc.Flag
	update := bson.M{"$set": bson.M{"flag": newFlag}}
	if newFlag {
		update["$set"].(bson.M)["flagged_at"] = time.Now()
	} else {
		update["$unset"] = bson.M{"flagged_at": ""}
	}

	if _, err := a.collection.UpdateByID(ctx, docID, update); err != nil {
		return false, fmt.Errorf("failed to toggle flag on %s: %w", docID, err)
	}
	return newFlag, nil
}

// DeleteBatch removes records by doc ID in one delete.
func (a *EmailAdapter) DeleteBatch(ctx context.Context, docIDs []string) (int64, error) {
	if len(docIDs) == 0 {
		return 0, nil
	}

	result, err := a.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": docIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete email records: %w", err)
	}
	return result.DeletedCount, nil
}

func toRecord(doc *emailDocument) *domain.EmailRecord {
	return &domain.EmailRecord{
		UserID:      doc.UserID,
		MessageID:   doc.MessageID,
		ThreadID:    doc.ThreadID,
		Sender:      doc.Sender,
		Subject:     doc.Subject,
		Snippet:     doc.Snippet,
		Body:        doc.Body,
		ReceivedAt:  doc.ReceivedAt,
		IsImportant: doc.IsImportant,
		Labels:      doc.Labels,
		CreatedAt:   doc.CreatedAt,
		Summary:     doc.Summary,
		Action:      doc.Action,
		IsRead:      doc.IsRead,
		Flag:        doc.Flag,
		Discard:     doc.Discard,
		ProcessedAt: doc.ProcessedAt,
		ActionType:  doc.ActionType,
		FlaggedAt:   doc.FlaggedAt,
	}
}

var _ out.EmailRepository = (*EmailAdapter)(nil)

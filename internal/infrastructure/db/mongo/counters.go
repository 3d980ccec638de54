package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const counterCollection = "counters"

// nextSequence atomically increments and returns the per-collection integer
// id counter. The upsert creates the counter document on first use.
func nextSequence(ctx context.Context, counters *mongo.Collection, name string) (int, error) {
	var doc struct {
		Seq int `bson:"seq"`
	}
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next sequence for %s: %w", name, err)
	}
	return doc.Seq, nil
}

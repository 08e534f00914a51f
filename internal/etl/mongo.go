package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/BartekS5/ingest/pkg/logger"
	"github.com/BartekS5/ingest/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSink writes rows as documents; the target table is a collection.
type MongoSink struct {
	Client   *mongo.Client
	Database string
}

func NewMongoSink(client *mongo.Client, database string) *MongoSink {
	return &MongoSink{Client: client, Database: database}
}

func (m *MongoSink) collection(name string) *mongo.Collection {
	return m.Client.Database(m.Database).Collection(name)
}

// Prepare drops the collection in replace mode. Collections are created on
// first insert, so append mode has nothing to do.
func (m *MongoSink) Prepare(ctx context.Context, table string, _ []models.ColumnDef, mode models.WriteMode) error {
	if mode == models.ModeAppend {
		return nil
	}
	if err := m.collection(table).Drop(ctx); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	return nil
}

func (m *MongoSink) Append(ctx context.Context, table string, cols []models.ColumnDef, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	docs := make([]interface{}, len(rows))
	for i, row := range rows {
		docs[i] = toDocument(cols, row)
	}

	res, err := m.collection(table).InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("insert many: %w", err)
	}
	logger.Debugf("Mongo InsertMany: %d documents into %s", len(res.InsertedIDs), table)
	return nil
}

// toDocument keeps column order and leaves null cells out.
func toDocument(cols []models.ColumnDef, row []any) bson.D {
	doc := make(bson.D, 0, len(cols))
	for i, c := range cols {
		if row[i] == nil {
			continue
		}
		doc = append(doc, bson.E{Key: c.Name, Value: row[i]})
	}
	return doc
}

func (m *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/model"
)

// MongoCatalog stores one document per photo. Inserts and deletes are
// per-record, so unlike FileCatalog it needs no catalog-wide lock; the
// unique index on id enforces the duplicate check server-side.
type MongoCatalog struct {
	Log *zap.Logger

	mongoClient *mongo.Client
	collection  *mongo.Collection
}

func (c *MongoCatalog) Connect(ctx context.Context, connectionString, databaseName, collectionName string) error {
	var err error
	c.mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	if err := c.mongoClient.Ping(ctx, nil); err != nil {
		return err
	}

	c.collection = c.mongoClient.Database(databaseName).Collection(collectionName)

	_, err = c.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	c.Log.Info("connected to MongoDB",
		zap.String("database", databaseName),
		zap.String("collection", collectionName),
	)
	return nil
}

func (c *MongoCatalog) Close(ctx context.Context) error {
	if c.mongoClient != nil {
		if err := c.mongoClient.Disconnect(ctx); err != nil {
			return err
		}
		c.Log.Info("disconnected from MongoDB")
	}
	return nil
}

func (c *MongoCatalog) ListAll(ctx context.Context) ([]model.Photo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	photos := []model.Photo{}
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (c *MongoCatalog) Find(ctx context.Context, id string) (*model.Photo, error) {
	var photo model.Photo
	err := c.collection.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&photo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &photo, nil
}

func (c *MongoCatalog) Insert(ctx context.Context, photo model.Photo) error {
	_, err := c.collection.InsertOne(ctx, photo)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

func (c *MongoCatalog) Remove(ctx context.Context, id string) error {
	res, err := c.collection.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goevery/votechess/internal/broadcaster"
	"github.com/goevery/votechess/internal/ierr"
	"github.com/goevery/votechess/internal/persistence"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const retention = 5 * 24 * time.Hour

type Message struct {
	Id             bson.ObjectID `bson:"_id"`
	CreateTime     time.Time     `bson:"createTime"`
	MessageType    string        `bson:"messageType"`
	MessageSubtype string        `bson:"messageSubtype"`
	Value          string        `bson:"value"`
}

func (m Message) Record() persistence.Record {
	return persistence.Record{
		Id:         m.Id.Hex(),
		CreateTime: m.CreateTime,
		Message: broadcaster.Message{
			MessageType:    broadcaster.MessageType(m.MessageType),
			MessageSubtype: m.MessageSubtype,
			Value:          m.Value,
		},
	}
}

type PersistenceEngine struct {
	collection *mongo.Collection
}

func NewPersistenceEngine(client *mongo.Client) *PersistenceEngine {
	database := client.Database("votechess")
	collection := database.Collection("messages")

	return &PersistenceEngine{
		collection,
	}
}

func (e *PersistenceEngine) Setup(ctx context.Context) error {
	ttlIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "createTime", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
	}

	typeIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "messageType", Value: 1},
			{Key: "_id", Value: 1},
		},
	}

	_, err := e.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{ttlIndexModel, typeIndexModel})

	return err
}

func (e *PersistenceEngine) Save(ctx context.Context, message broadcaster.Message) (persistence.Record, error) {
	document := Message{
		Id:             bson.NewObjectID(),
		CreateTime:     time.Now(),
		MessageType:    string(message.MessageType),
		MessageSubtype: message.MessageSubtype,
		Value:          message.Value,
	}

	if _, err := e.collection.InsertOne(ctx, document); err != nil {
		return persistence.Record{}, err
	}

	return document.Record(), nil
}

func (e *PersistenceEngine) List(ctx context.Context, request persistence.ListRequest) ([]persistence.Record, error) {
	filter := bson.M{}

	if request.MessageType != "" {
		filter["messageType"] = string(request.MessageType)
	}

	if request.AfterId != "" {
		afterObjectId, err := bson.ObjectIDFromHex(request.AfterId)
		if err != nil {
			return nil, ierr.New(ierr.ErrorCodeInvalidArgument, fmt.Errorf("invalid after id: %w", err))
		}

		filter["_id"] = bson.M{"$gt": afterObjectId}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(request.EffectiveLimit()))

	cursor, err := e.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var documents []Message
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, err
	}

	records := make([]persistence.Record, len(documents))
	for i, document := range documents {
		records[i] = document.Record()
	}

	return records, nil
}

// Connect opens a client and verifies the server is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongodb uri is empty")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, err
	}

	return client, nil
}

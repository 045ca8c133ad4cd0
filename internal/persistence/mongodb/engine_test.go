package mongodb

import (
	"testing"
	"time"

	"github.com/goevery/votechess/internal/broadcaster"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMessage_Record(t *testing.T) {
	id := bson.NewObjectID()
	createTime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	record := Message{
		Id:             id,
		CreateTime:     createTime,
		MessageType:    "VOTE",
		MessageSubtype: "SINGLE",
		Value:          "e4",
	}.Record()

	assert.Equal(t, id.Hex(), record.Id)
	assert.Equal(t, createTime, record.CreateTime)
	assert.Equal(t, broadcaster.NewVote("e4"), record.Message)
}

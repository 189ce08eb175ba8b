package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	CollectionUsers       = "users"
	CollectionIdentities  = "identities"
	CollectionBets        = "bets"
	CollectionResults     = "results"
	CollectionLoadControl = "loadControl"
)

// Change operations.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent announces a write to one collection.
type ChangeEvent struct {
	Collection string             `json:"collection"`
	Operation  string             `json:"operation"`
	DocumentID primitive.ObjectID `json:"documentId"`
	At         time.Time          `json:"at"`
}

// NewChangeEvent stamps an event with the current time.
func NewChangeEvent(collection, op string, id primitive.ObjectID) ChangeEvent {
	return ChangeEvent{Collection: collection, Operation: op, DocumentID: id, At: time.Now()}
}

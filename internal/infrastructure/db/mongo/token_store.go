package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feedbackhub/feedback-client/internal/core/ports"
)

const (
	sessionCollection = "client_sessions"
	// DefaultKey is the document id used when no key is configured.
	DefaultKey = ports.DefaultTokenKey
)

type sessionDoc struct {
	Key       string    `bson:"_id"`
	Token     string    `bson:"token"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// TokenStore keeps the credential token in a single document keyed by the
// configured session key.
type TokenStore struct {
	coll *mongo.Collection
	key  string
	now  func() time.Time
}

func NewTokenStore(db *mongo.Database, key string) *TokenStore {
	return newTokenStore(db.Collection(sessionCollection), key)
}

func newTokenStore(coll *mongo.Collection, key string) *TokenStore {
	if key == "" {
		key = DefaultKey
	}
	return &TokenStore{coll: coll, key: key, now: time.Now}
}

// Load returns "" when no session document exists.
func (s *TokenStore) Load(ctx context.Context) (string, error) {
	var doc sessionDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find session %s: %w", s.key, err)
	}
	return doc.Token, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	update := bson.M{"$set": bson.M{
		"token":      token,
		"updated_at": s.now().UTC(),
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": s.key}, update, opts); err != nil {
		return fmt.Errorf("upsert session %s: %w", s.key, err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.key}); err != nil {
		return fmt.Errorf("delete session %s: %w", s.key, err)
	}
	return nil
}

func (s *TokenStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

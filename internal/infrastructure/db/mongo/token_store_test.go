package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestTokenStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("load existing", func(mt *mtest.T) {
		store := newTokenStore(mt.Coll, "")
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: DefaultKey},
			{Key: "token", Value: "abc"},
			{Key: "updated_at", Value: time.Now()},
		}))

		token, err := store.Load(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, "abc", token)
	})

	mt.Run("load missing", func(mt *mtest.T) {
		store := newTokenStore(mt.Coll, "")
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		token, err := store.Load(context.Background())
		require.NoError(mt, err)
		assert.Empty(mt, token)
	})

	mt.Run("save upserts", func(mt *mtest.T) {
		store := newTokenStore(mt.Coll, "alice-laptop")
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		require.NoError(mt, store.Save(context.Background(), "abc"))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
		upsert, err := started.Command.LookupErr("updates", "0", "upsert")
		require.NoError(mt, err)
		assert.True(mt, upsert.Boolean())
	})

	mt.Run("clear", func(mt *mtest.T) {
		store := newTokenStore(mt.Coll, "")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		require.NoError(mt, store.Clear(context.Background()))
		assert.Equal(mt, "delete", mt.GetStartedEvent().CommandName)
	})

	mt.Run("backend error", func(mt *mtest.T) {
		store := newTokenStore(mt.Coll, "")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		_, err := store.Load(context.Background())
		assert.Error(mt, err)
	})
}

package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/bidhaus/goapi/base/ptr"
)

func TestMakeBsonM(t *testing.T) {
	req := require.New(t)

	type patchable struct {
		State  *string `bson:"state,omitempty"`
		Winner *string `bson:"winner,omitempty"`
		Count  int64   `bson:"count,omitempty"`
	}

	m, err := MakeBsonM(&patchable{
		State: ptr.String("ended"),
		Count: 3,
	})
	req.NoError(err)
	req.Equal(bson.M{"state": "ended", "count": int64(3)}, m)

	m, err = MakeBsonM(&patchable{})
	req.NoError(err)
	req.Empty(m)
}

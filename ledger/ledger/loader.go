package ledger

import (
	"context"

	"github.com/vikstrous/dataloadgen"
)

// ObjectLoader batches individual object reads into MultiGetObjects calls.
// A loader caches what it has fetched, so one instance must not outlive a
// single reconciliation pass: object state has to be re-read fresh on the
// next pass.
type ObjectLoader struct {
	Objects *dataloadgen.Loader[ObjectID, *ObjectSnapshot]
}

func NewObjectLoader(client Client) *ObjectLoader {
	return &ObjectLoader{
		Objects: dataloadgen.NewMappedLoader(func(ctx context.Context, ids []ObjectID) (map[ObjectID]*ObjectSnapshot, error) {
			return client.MultiGetObjects(ctx, ids)
		}),
	}
}

package query

/*
	Package query wraps https://github.com/mongodb/mongo-go-driver with
	the small set of operations the repositories need. See
	https://godoc.org/go.mongodb.org/mongo-driver/mongo for driver
	details.
*/

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/domain"
)

var (
	// ErrNotFound is mongo document not found error
	ErrNotFound = fmt.Errorf("document not found")

	// ErrDuplicateKey is an error when violating unique index
	ErrDuplicateKey = fmt.Errorf("duplicate key")

	// ErrCollScan is error for unindexed query
	ErrCollScan = fmt.Errorf("COLLSCAN is not allowed")
)

type patchOp struct {
	patchMany bool
}

// PatchOp is an alias for functional argument
type PatchOp func(*patchOp)

// WithPatchMany patches every entry the selector matches instead of one.
func WithPatchMany(patchMany bool) PatchOp {
	return func(o *patchOp) {
		o.patchMany = patchMany
	}
}

// Mongo abstracts the mongo layer.
type Mongo interface {
	// Insert inserts a new document to the table.
	// Return ErrDuplicateKey when violating a unique index.
	Insert(context ctx.Ctx, table domain.Table, insert interface{}) error

	// FindOne gets one document from the table.
	// Return ErrNotFound if query does not match any documents.
	FindOne(context ctx.Ctx, table domain.Table, query, result interface{}) error

	// Count returns the number of matched entries in the table
	// https://docs.mongodb.com/manual/reference/method/db.collection.countDocuments
	Count(context ctx.Ctx, table domain.Table, selector interface{}) (n int, err error)

	// Upsert replaces the entry matching selector, inserting it when absent.
	Upsert(context ctx.Ctx, table domain.Table, selector, update interface{}) error

	// Search sorts order by `sort` argument (ex "timestamp" ascending, or "-timestamp" descending)
	// if `sort` is "", the sort action is skipped, and the MongoDB does not guarantee the order of query results.
	Search(context ctx.Ctx, table domain.Table, offset, limit int, sort string, query, results interface{}) error

	// Remove removes an entry from the table.
	// Return ErrNotFound if selector does not match any documents.
	Remove(context ctx.Ctx, table domain.Table, selector interface{}) error

	// RemoveAll removes all entries matching the selector from the table.
	RemoveAll(context ctx.Ctx, table domain.Table, selector interface{}) (removedCnt int64, err error)

	// Patch patches an entry. To patch all entries selected, set WithPatchMany(true).
	// Return ErrNotFound if selector does not match any documents.
	Patch(context ctx.Ctx, table domain.Table, selector, update interface{}, ops ...PatchOp) error

	// CustomPatch patches an entry with a customized mongo update document.
	// Return ErrNotFound if upsert is false and selector does not match any documents.
	CustomPatch(context ctx.Ctx, table domain.Table, selector, update bson.M, upsert bool) error

	// Increment increases a field's number atomically and decodes the
	// updated document into result. If the entry does not exist, insert it.
	Increment(context ctx.Ctx, table domain.Table, selector, result interface{}, field string, inc interface{}) error
}

// internal/app/system/paging/paging.go
package paging

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageSize is the number of rows returned by paged list endpoints.
const PageSize = 50

// LimitPlusOne returns PageSize+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// ParseAfter extracts the optional "after" query parameter, a document
// id acting as the keyset cursor. The zero ObjectID means "from the
// start".
func ParseAfter(r *http.Request) (primitive.ObjectID, error) {
	s := query.Get(r, "after")
	if s == "" {
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.BadRequest, "invalid after cursor")
	}
	return id, nil
}

// TrimPage trims a slice fetched with LimitPlusOne rows down to
// PageSize, reporting whether a further page exists.
func TrimPage[T any](rows *[]T) (hasNext bool) {
	if len(*rows) > PageSize {
		*rows = (*rows)[:PageSize]
		return true
	}
	return false
}

// SetHasNext exposes the look-ahead result to API clients.
func SetHasNext(w http.ResponseWriter, hasNext bool) {
	if hasNext {
		w.Header().Set("X-Has-Next", "true")
	}
}

package tagdex

import (
	domrec "github.com/kailas-cloud/tagdex/internal/domain/record"
	"github.com/kailas-cloud/tagdex/internal/domain/search/rank"
)

// Record is a stored document description with its tags.
type Record struct {
	ID          int64
	Description string
	Tags        []string
	Path        string
}

// Hit is a search result.
type Hit struct {
	Record Record
	Score  float64
}

// Page is one slice of the record list.
type Page struct {
	Records    []Record
	NextCursor string // empty on the last page
}

func recordFromDomain(r *domrec.Record) Record {
	return Record{
		ID:          r.ID(),
		Description: r.Description(),
		Tags:        r.Tags(),
		Path:        r.Path(),
	}
}

func hitsFromDomain(hits []rank.Hit) []Hit {
	out := make([]Hit, len(hits))
	for i := range hits {
		out[i] = Hit{Record: recordFromDomain(&hits[i].Record), Score: hits[i].Score}
	}
	return out
}

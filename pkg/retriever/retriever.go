package retriever

import (
	"github.com/ecmwf/fdb-go/pkg/database"
	"github.com/ecmwf/fdb-go/pkg/metrics"
	"github.com/ecmwf/fdb-go/pkg/schema"
)

// Retriever answers MARS-style requests against the databases a Schema
// can resolve. NotifyWinds, when set, is invoked at most once per
// Retrieve call whose result contains fields that must be synthesised
// into U/V wind components from archived vorticity and divergence.
type Retriever struct {
	schema      *schema.Schema
	manager     *database.Manager
	NotifyWinds func()
}

// New builds a Retriever reading according to s, using manager to open
// databases.
func New(s *schema.Schema, manager *database.Manager) *Retriever {
	return &Retriever{schema: s, manager: manager}
}

// schemaPath exposes the master schema's own path, so the per-DB drift
// check in retrieveVisitor.SelectDatabase has something to compare
// against. Empty when the Schema wasn't loaded from disk (e.g. built by
// Parse directly, as tests do), in which case drift can't be detected and
// isn't checked.
func (r *Retriever) schemaPath() string { return r.schema.Path }

// Retrieve expands req over the schema and returns a DataHandle for every
// field it resolves to. Request options are read directly off req.Values:
// "_sort"="1" groups and orders the result by data file for efficient
// sequential reads.
func (r *Retriever) Retrieve(req *schema.Request) ([]DataHandle, error) {
	timer := metrics.NewTimer()
	v := &retrieveVisitor{r: r}
	err := r.schema.ExpandRead(req, v, v.axisFor)
	timer.ObserveDuration(metrics.RetrieveDuration)
	if err != nil {
		return nil, err
	}
	if v.windsWanted && r.NotifyWinds != nil {
		r.NotifyWinds()
	}

	handles := v.handles
	if sortValues, ok := req.Values["_sort"]; ok && len(sortValues) > 0 && sortValues[0] == "1" {
		handles = sortByFile(handles)
	}
	metrics.RetrieveHandlesTotal.Add(float64(len(handles)))
	return handles, nil
}

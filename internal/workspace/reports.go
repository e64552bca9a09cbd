package workspace

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"bxls/internal/diag"
)

// Report is the current diagnostic list of one document. ResultID grows by
// one on every replacement of the list.
type Report struct {
	URI         string
	ResultID    int
	Diagnostics []diag.Diagnostic
	// ModTime is the modification time of the file version the list was
	// computed from. Zero for editor buffers.
	ModTime time.Time

	open bool
	gen  uint64
}

// current reports whether r was computed from the same disk version under
// the same lint config generation as next.
func (r Report) current(next Report) bool {
	return !r.open && !r.ModTime.IsZero() && r.ModTime.Equal(next.ModTime) && r.gen == next.gen
}

// ID formats ResultID for the wire.
func (r Report) ID() string {
	return strconv.Itoa(r.ResultID)
}

// reportStore keeps reports for the lifetime of the workspace.
type reportStore struct {
	mu      sync.RWMutex
	reports map[string]Report
}

func newReportStore() *reportStore {
	return &reportStore{reports: make(map[string]Report)}
}

// set replaces the list for uri and returns the new report.
func (s *reportStore) set(uri string, diags []diag.Diagnostic) Report {
	return s.store(Report{URI: uri, Diagnostics: diags})
}

// store replaces the report of r.URI with r under the next result id.
func (s *reportStore) store(r Report) Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeLocked(r)
}

// refresh stores r unless the current report already came from the same
// disk version, in which case the current report is kept with its id.
func (s *reportStore) refresh(r Report) Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.reports[r.URI]; ok && cur.current(r) {
		return cur
	}
	return s.storeLocked(r)
}

func (s *reportStore) storeLocked(r Report) Report {
	r.ResultID = s.reports[r.URI].ResultID + 1
	s.reports[r.URI] = r
	reportReplacements.Inc()
	return r
}

func (s *reportStore) get(uri string) (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[uri]
	return r, ok
}

// all returns every report ordered by URI.
func (s *reportStore) all() []Report {
	s.mu.RLock()
	out := make([]Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// Reports returns every stored report ordered by URI.
func (c *Coordinator) Reports() []Report {
	return c.reports.all()
}

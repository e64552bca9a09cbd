package workspace

import (
	"context"

	"bxls/internal/diag"
	"bxls/internal/source"
)

// ReportKind tells the client whether Items replaces its list.
type ReportKind string

const (
	ReportFull      ReportKind = "full"
	ReportUnchanged ReportKind = "unchanged"
)

// PulledReport is one document entry of a pull diagnostics response.
type PulledReport struct {
	URI      string
	Kind     ReportKind
	ResultID string
	// Items is nil for unchanged reports.
	Items []diag.Diagnostic
}

func pulled(r Report, previous string) PulledReport {
	if previous != "" && previous == r.ID() {
		return PulledReport{URI: r.URI, Kind: ReportUnchanged, ResultID: previous}
	}
	items := r.Diagnostics
	if items == nil {
		items = []diag.Diagnostic{}
	}
	return PulledReport{URI: r.URI, Kind: ReportFull, ResultID: r.ID(), Items: items}
}

// PullWorkspaceDiagnostics answers a workspace pull from the cached reports.
// previous maps URIs to the result ids the client already has. On
// cancellation the reports produced so far are returned with ctx's error.
func (c *Coordinator) PullWorkspaceDiagnostics(ctx context.Context, previous map[string]string) ([]PulledReport, error) {
	byPath := make(map[string]string, len(previous))
	for uri, id := range previous {
		if path := source.URIToPath(uri); path != "" {
			byPath[path] = id
		}
	}
	reports := c.reports.all()
	out := make([]PulledReport, 0, len(reports))
	for _, r := range reports {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		prev, ok := previous[r.URI]
		if !ok {
			prev = byPath[source.URIToPath(r.URI)]
		}
		out = append(out, pulled(r, prev))
	}
	return out, nil
}

// PullDocumentDiagnostics answers a pull for one document.
func (c *Coordinator) PullDocumentDiagnostics(uri, previousID string) (PulledReport, error) {
	if !c.ShouldAnalyze(source.URIToPath(uri)) {
		r, ok := c.reports.get(uri)
		if !ok || len(r.Diagnostics) > 0 {
			r = c.reports.set(uri, nil)
		}
		return pulled(r, previousID), nil
	}
	doc, err := c.Resolve(uri)
	if err != nil {
		return PulledReport{}, err
	}
	r, ok := c.reports.get(uri)
	if !ok {
		if r, ok = c.storeClosed(doc); !ok {
			r, _ = c.reports.get(uri)
		}
	}
	return pulled(r, previousID), nil
}

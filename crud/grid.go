package crud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Kellerman81/go_portfolio_admin/apperrors"
)

// Fetcher lists one page of an endpoint. Implementations return an empty
// listing for a missing collection (HTTP 404).
type Fetcher interface {
	FetchPage(ctx context.Context, endpoint string, params Params) (Listing, error)
}

// Lister lists every record of an endpoint, used for lookups.
type Lister interface {
	FetchAll(ctx context.Context, endpoint string) ([]Row, error)
}

// GridResult is what the grid currently displays.
type GridResult struct {
	Rows  []Row
	Total int
	// Err is the banner text of the last failed load, empty on success.
	Err string
	// Cause is the error behind Err, kept for logging.
	Cause error
	// Seq is the sequence number of the applied request.
	Seq uint64
}

// Grid loads listing pages. When loads overlap, only the response of the most
// recently issued request is applied.
type Grid struct {
	mu     sync.Mutex
	issued uint64
	result GridResult
}

// Result returns the currently displayed state.
func (g *Grid) Result() GridResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

// Issued returns how many requests were issued.
func (g *Grid) Issued() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issued
}

// Begin issues a new request sequence number.
func (g *Grid) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.issued
}

// Apply stores the outcome of request seq unless a newer request was issued
// meanwhile. It reports whether the outcome was applied.
func (g *Grid) Apply(seq uint64, listing Listing, err error) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq != g.issued {
		return false
	}
	if err != nil {
		g.result = GridResult{Rows: nil, Total: 0, Err: LoadErrorMessage(err), Cause: err, Seq: seq}
		return true
	}
	rows := listing.Items
	if rows == nil {
		rows = []Row{}
	}
	g.result = GridResult{Rows: rows, Total: listing.Total, Seq: seq}
	return true
}

// Load fetches q from endpoint and applies the result. The returned result is
// the displayed state after the call, which is the newer state when this
// response was superseded.
func (g *Grid) Load(ctx context.Context, f Fetcher, endpoint string, set *FilterSet, q Query) (GridResult, bool) {
	seq := g.Begin()
	listing, err := f.FetchPage(ctx, endpoint, q.Params(set))
	applied := g.Apply(seq, listing, err)
	return g.Result(), applied
}

// LoadErrorMessage is the banner text for a failed listing.
func LoadErrorMessage(err error) string {
	return "Failed to load data: " + ErrorText(err)
}

// ErrorText is the part of err shown to users: the backend detail when there
// is one, otherwise the HTTP status or a message for the failure class.
// Internal error text only goes to the log.
func ErrorText(err error) string {
	var d interface{ Detail() string }
	if errors.As(err, &d) && d.Detail() != "" {
		return d.Detail()
	}
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		if txt := http.StatusText(sc.StatusCode()); txt != "" {
			return fmt.Sprintf("HTTP %d %s", sc.StatusCode(), txt)
		}
		return fmt.Sprintf("HTTP %d", sc.StatusCode())
	}
	switch {
	case apperrors.IsClass(err, apperrors.ErrClassNetwork):
		return "backend unreachable"
	case apperrors.IsClass(err, apperrors.ErrClassParsing):
		return "unexpected response from backend"
	default:
		return "unexpected error"
	}
}

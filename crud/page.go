package crud

import (
	"context"
	"net/url"
	"slices"
	"sync"
)

// fetchKey identifies the listing a grid shows. The grid refetches only when
// it changes.
type fetchKey struct {
	pagination Pagination
	sort       SortKey
	filters    uint64
	match      MatchMode
	refresh    uint64
}

// Page is the state owner of one resource screen: filters, pagination, sort,
// the open dialog and the refresh token. Idle is a page without dialog.
type Page struct {
	Resource *Resource
	Grid     Grid

	mu             sync.Mutex
	bar            *FilterBar
	committed      Values
	filtersVersion uint64
	match          MatchMode
	pendingMatch   MatchMode
	pagination     Pagination
	sort           SortState
	refreshToken   uint64
	dialog         *Form
	filterOptions  map[string][]Option
	loaded         bool
	lastKey        fetchKey

	// submitMu serializes submissions of the dialog.
	submitMu sync.Mutex
}

// NewPage returns an idle page without filters on the first page.
func NewPage(res *Resource, pageSize int) *Page {
	return &Page{
		Resource:      res,
		bar:           NewFilterBar(res.Filters, nil),
		committed:     Values{},
		match:         MatchAny,
		pendingMatch:  MatchAny,
		pagination:    Pagination{Page: 0, PageSize: pageSize},
		filterOptions: map[string][]Option{},
	}
}

// PageView is a consistent copy of the page state for rendering.
type PageView struct {
	Rows          []ActiveFilterRow
	Pending       Values
	Committed     Values
	Match         MatchMode
	CanAdd        bool
	CanRemove     bool
	Pagination    Pagination
	Sort          SortState
	RefreshToken  uint64
	Dialog        *Form
	FilterOptions map[string][]Option
	Grid          GridResult
}

// View returns a snapshot of the state.
func (p *Page) View() PageView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PageView{
		Rows:          p.bar.Rows(),
		Pending:       p.bar.Pending(),
		Committed:     p.committed.Clone(),
		Match:         p.pendingMatch,
		CanAdd:        p.bar.CanAdd(),
		CanRemove:     p.bar.CanRemove(),
		Pagination:    p.pagination,
		Sort:          slices.Clone(p.sort),
		RefreshToken:  p.refreshToken,
		Dialog:        p.dialog,
		FilterOptions: p.filterOptions,
		Grid:          p.Grid.Result(),
	}
}

// OptionDisabled reports whether key is bound to a row other than rowID.
func (p *Page) OptionDisabled(rowID int, key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bar.OptionDisabled(rowID, key)
}

// EditFilters runs fn on the filter bar. Editing never fetches.
func (p *Page) EditFilters(fn func(*FilterBar) bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.bar)
}

// SetMatch records the AND/OR choice. It takes effect on the next Search.
func (p *Page) SetMatch(m MatchMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingMatch = m
}

// SetFilterOptions stores the loaded options of the select filters.
func (p *Page) SetFilterOptions(opts map[string][]Option) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filterOptions = opts
}

// Search commits the cleaned pending values and resets to the first page.
// Every search is a new committed identity, so the grid refetches even when
// the values did not change.
func (p *Page) Search() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.committed = p.bar.Search()
	p.match = p.pendingMatch
	p.filtersVersion++
	p.pagination.Page = 0
}

// ResetFilters clears pending and committed values, as if the page was new.
func (p *Page) ResetFilters() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Hydrate(nil)
	p.committed = Values{}
	p.filtersVersion++
	p.pagination.Page = 0
}

// SetPagination applies a page change from the grid. A page size change
// returns to the first page.
func (p *Page) SetPagination(pg Pagination) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pg.PageSize <= 0 {
		pg.PageSize = p.pagination.PageSize
	}
	if pg.PageSize != p.pagination.PageSize {
		pg.Page = 0
	}
	p.pagination = Pagination{Page: max(pg.Page, 0), PageSize: pg.PageSize}
}

// SetSort replaces the sort state. Only the first key is kept.
func (p *Page) SetSort(s SortState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(s) > 1 {
		s = s[:1]
	}
	p.sort = slices.Clone(s)
}

// ToggleSort cycles the sort of field.
func (p *Page) ToggleSort(field string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sort = p.sort.Toggle(field)
}

// Query returns the listing request for the current state.
func (p *Page) Query() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queryLocked()
}

func (p *Page) queryLocked() Query {
	return Query{
		Pagination: p.pagination,
		Sort:       slices.Clone(p.sort),
		Filters:    p.committed.Clone(),
		Match:      p.match,
	}
}

func (p *Page) keyLocked() fetchKey {
	k := fetchKey{
		pagination: p.pagination,
		filters:    p.filtersVersion,
		match:      p.match,
		refresh:    p.refreshToken,
	}
	k.sort, _ = p.sort.Primary()
	return k
}

// Sync fetches the listing when its inputs changed since the last load and
// returns the displayed result.
func (p *Page) Sync(ctx context.Context, f Fetcher) GridResult {
	p.mu.Lock()
	key := p.keyLocked()
	if p.loaded && key == p.lastKey {
		p.mu.Unlock()
		return p.Grid.Result()
	}
	p.loaded = true
	p.lastKey = key
	q := p.queryLocked()
	p.mu.Unlock()

	res, applied := p.Grid.Load(ctx, f, p.Resource.Endpoint, p.Resource.Filters, q)
	if applied && p.clampPage(q.Pagination, res) {
		return p.Sync(ctx, f)
	}
	return res
}

// clampPage moves to the last page when a load of requested came back empty
// although rows exist, e.g. after deleting the only row of the last page.
// It reports whether the page changed.
func (p *Page) clampPage(requested Pagination, res GridResult) bool {
	if res.Err != "" || len(res.Rows) > 0 || res.Total == 0 || requested.Page == 0 || requested.PageSize <= 0 {
		return false
	}
	last := (res.Total - 1) / requested.PageSize
	if last >= requested.Page {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pagination != requested {
		return false
	}
	p.pagination.Page = last
	return true
}

// Reload fetches the listing unconditionally.
func (p *Page) Reload(ctx context.Context, f Fetcher) GridResult {
	p.mu.Lock()
	p.loaded = false
	p.mu.Unlock()
	return p.Sync(ctx, f)
}

// Row returns a displayed row by id.
func (p *Page) Row(id string) (Row, bool) {
	for _, r := range p.Grid.Result().Rows {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// Open moves the page to DialogOpen with a fresh form. Any open dialog is
// replaced, never merged.
func (p *Page) Open(mode Mode, record Row) *Form {
	return p.OpenForm(NewForm(p.Resource.Form, mode, record))
}

// OpenForm publishes a prepared form as the open dialog. The form must be
// complete, lookups included: other requests read it from now on.
func (p *Page) OpenForm(form *Form) *Form {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialog = form
	return form
}

// Dialog returns the open dialog, nil when idle.
func (p *Page) Dialog() *Form {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dialog
}

// Cancel closes the dialog without touching anything else.
func (p *Page) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialog = nil
}

// RefreshToken returns the number of successful mutations.
func (p *Page) RefreshToken() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshToken
}

// Input applies posted input to the open dialog without submitting it.
func (p *Page) Input(posted url.Values) *Form {
	p.submitMu.Lock()
	defer p.submitMu.Unlock()
	form := p.Dialog()
	if form != nil {
		form.Apply(posted)
	}
	return form
}

// Submit applies posted input to the open dialog and performs the mutation.
// Success closes the dialog and increments the refresh token; failure keeps
// the dialog open with its input and message.
func (p *Page) Submit(ctx context.Context, m Mutator, v *Validator, posted url.Values) (MutationResult, *Form) {
	p.submitMu.Lock()
	defer p.submitMu.Unlock()

	form := p.Dialog()
	if form == nil {
		return MutationResult{Message: "No dialog is open"}, nil
	}
	form.Apply(posted)
	res := form.Submit(ctx, m, p.Resource.Endpoint, v)
	if !res.OK {
		return res, form
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dialog == form {
		p.dialog = nil
	}
	p.refreshToken++
	return res, nil
}

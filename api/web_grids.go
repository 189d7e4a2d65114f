package api

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/Kellerman81/go_portfolio_admin/apperrors"
	"github.com/Kellerman81/go_portfolio_admin/config"
	"github.com/Kellerman81/go_portfolio_admin/crud"
	"github.com/Kellerman81/go_portfolio_admin/logger"
	"github.com/Kellerman81/go_portfolio_admin/metrics"
	gin "github.com/gin-gonic/gin"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

// syncGrid loads the listing when the page state changed since the last load.
func (cs *Console) syncGrid(c *gin.Context, pg *crud.Page) crud.GridResult {
	before := pg.Grid.Issued()
	res := pg.Sync(c.Request.Context(), cs.backend)
	if pg.Grid.Issued() == before {
		return res
	}
	outcome := "ok"
	if res.Cause != nil {
		outcome = "error"
		apperrors.LogClassifiedError(logger.Logtype(logger.StatusWarning, 0), res.Cause).
			Str(logger.StrResource, pg.Resource.Key).
			Uint64(logger.StrSeq, res.Seq).
			Msg("Grid load failed")
	}
	metrics.ObserveGridLoad(pg.Resource.Key, outcome)
	return res
}

// apiGrid applies pagination and sort changes from the query and returns the
// grid. Without parameters it only reloads when the page state changed, which
// is how the grid follows a "grid-refresh" event.
func (cs *Console) apiGrid(c *gin.Context) {
	pg := pageOf(c)
	q := pg.Query()

	if c.Query("page") != "" || c.Query("pageSize") != "" {
		pagination := q.Pagination
		if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
			pagination.Page = n - 1
		}
		if n, err := strconv.Atoi(c.Query("pageSize")); err == nil && slices.Contains(config.PageSizes, n) {
			pagination.PageSize = n
		}
		pg.SetPagination(pagination)
	}
	if field, ok := c.GetQuery("sortField"); ok {
		switch dir := crud.SortDirection(c.Query("sortOrder")); {
		case field == "" || (dir != crud.SortAsc && dir != crud.SortDesc):
			pg.SetSort(nil)
		default:
			pg.SetSort(crud.SortState{{Field: field, Direction: dir}})
		}
	}

	cs.syncGrid(c, pg)
	renderNode(c, http.StatusOK, renderGrid(resourceOf(c), pg.View()))
}

func gridURL(res *crud.Resource, v url.Values) string {
	return resourceURL(res, "/grid?"+v.Encode())
}

// renderGrid renders the table of the current page. The grid reloads itself
// on the "grid-refresh" event.
func renderGrid(res *crud.Resource, view crud.PageView) gomponents.Node {
	result := view.Grid

	var banner gomponents.Node
	if result.Err != "" {
		banner = html.Div(html.Class("alert alert-danger alert-dismissible"), html.Role("alert"),
			gomponents.Text(result.Err),
			html.Button(html.Type("button"), html.Class("btn-close"), html.Aria("label", "Close"),
				gomponents.Attr("onclick", "this.parentElement.remove()")),
		)
	}

	headers := make([]gomponents.Node, 0, len(res.Columns)+1)
	for _, col := range res.Columns {
		headers = append(headers, renderHeader(res, view, col))
	}
	headers = append(headers, html.Th(html.Class("text-end"), gomponents.Text("Actions")))

	body := make([]gomponents.Node, 0, len(result.Rows))
	for _, row := range result.Rows {
		body = append(body, renderRow(res, row))
	}
	if len(body) == 0 {
		body = append(body, html.Tr(html.Td(html.ColSpan(strconv.Itoa(len(res.Columns)+1)),
			html.Class("text-center text-muted"), gomponents.Text("No records found"))))
	}

	return html.Div(
		html.ID("grid"),
		hx.Get(resourceURL(res, "/grid")),
		hx.Trigger(triggerGridRefresh+" from:body"),
		hx.Swap("outerHTML"),
		hx.Target("this"),
		banner,
		html.Div(html.Class("table-responsive"),
			html.Table(html.Class("table table-hover align-middle"),
				html.THead(html.Tr(gomponents.Group(headers))),
				html.TBody(gomponents.Group(body)),
			),
		),
		renderPagination(res, view),
	)
}

// renderHeader renders a column title. Sortable titles cycle the sort
// asc, desc and unsorted.
func renderHeader(res *crud.Resource, view crud.PageView, col crud.Column) gomponents.Node {
	attrs := []gomponents.Node{}
	if col.Width != "" {
		attrs = append(attrs, html.Style("width: "+col.Width))
	}
	if !col.Sortable {
		return html.Th(append(attrs, gomponents.Text(col.Header))...)
	}

	var indicator string
	if key, ok := view.Sort.Primary(); ok && key.Field == col.Field {
		indicator = " ▲"
		if key.Direction == crud.SortDesc {
			indicator = " ▼"
		}
	}
	v := url.Values{"sortField": {col.Field}, "sortOrder": {""}}
	if next, ok := view.Sort.Toggle(col.Field).Primary(); ok {
		v.Set("sortOrder", string(next.Direction))
	}
	return html.Th(append(attrs,
		html.A(html.Class("sort-link"), hx.Get(gridURL(res, v)), hx.Target("#grid"),
			gomponents.Text(col.Header+indicator)),
	)...)
}

func renderRow(res *crud.Resource, row crud.Row) gomponents.Node {
	cells := make([]gomponents.Node, 0, len(res.Columns)+1)
	for _, col := range res.Columns {
		cells = append(cells, html.Td(renderCell(col, row)))
	}
	id := row.ID()
	cells = append(cells, html.Td(html.Class("text-end text-nowrap"),
		html.Button(html.Class("btn btn-sm btn-outline-primary me-1"), html.Type("button"),
			gomponents.Attr("title", "Edit "+res.Entity),
			hx.Get(resourceURL(res, "/dialog/edit/"+url.PathEscape(id))), hx.Target("#dialog"),
			gomponents.Text("Edit"),
		),
		html.Button(html.Class("btn btn-sm btn-outline-danger"), html.Type("button"),
			gomponents.Attr("title", "Delete "+res.Entity),
			hx.Get(resourceURL(res, "/dialog/delete/"+url.PathEscape(id))), hx.Target("#dialog"),
			gomponents.Text("Delete"),
		),
	))
	return html.Tr(html.Data("id", id), gomponents.Group(cells))
}

func renderCell(col crud.Column, row crud.Row) gomponents.Node {
	switch col.Kind {
	case crud.ColumnChip, crud.ColumnBool:
		return chip(col.Display(row), col.ChipTone(row))
	case crud.ColumnChips:
		items := col.ChipItems(row)
		chips := make([]gomponents.Node, 0, len(items))
		for _, item := range items {
			chips = append(chips, chip(item, "secondary"), gomponents.Text(" "))
		}
		return gomponents.Group(chips)
	default:
		return gomponents.Text(col.Display(row))
	}
}

func chip(text, tone string) gomponents.Node {
	return html.Span(html.Class("badge rounded-pill text-bg-"+tone), gomponents.Text(text))
}

// renderPagination renders the page size choice, the row range and the
// previous/next buttons.
func renderPagination(res *crud.Resource, view crud.PageView) gomponents.Node {
	pg := view.Pagination
	total := view.Grid.Total
	pages := 1
	if pg.PageSize > 0 && total > 0 {
		pages = (total + pg.PageSize - 1) / pg.PageSize
	}
	from, to := 0, 0
	if total > 0 {
		from = pg.Page*pg.PageSize + 1
		to = min(from+len(view.Grid.Rows)-1, total)
	}

	sizes := make([]gomponents.Node, 0, len(config.PageSizes))
	for _, n := range config.PageSizes {
		sizes = append(sizes, createOption(strconv.Itoa(n), strconv.Itoa(n), n == pg.PageSize))
	}

	link := func(page int, text string, enabled bool) gomponents.Node {
		v := url.Values{"page": {strconv.Itoa(page + 1)}, "pageSize": {strconv.Itoa(pg.PageSize)}}
		return html.Button(html.Class("btn btn-sm btn-outline-secondary"), html.Type("button"),
			hx.Get(gridURL(res, v)), hx.Target("#grid"),
			gomponents.If(!enabled, html.Disabled()),
			gomponents.Text(text),
		)
	}

	return html.Div(html.Class("d-flex justify-content-end align-items-center gap-3"),
		html.Label(html.Class("small text-muted"), html.For("page-size"), gomponents.Text("Rows per page")),
		html.Select(html.ID("page-size"), html.Class("form-select form-select-sm w-auto"), html.Name("pageSize"),
			hx.Get(resourceURL(res, "/grid")), hx.Target("#grid"), hx.Trigger("change"),
			gomponents.Group(sizes),
		),
		html.Span(html.Class("small"), gomponents.Text(fmt.Sprintf("%d-%d of %d", from, to, total))),
		link(pg.Page-1, "Previous", pg.Page > 0),
		link(pg.Page+1, "Next", pg.Page+1 < pages),
	)
}

package api

import (
	"net/http"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/Kellerman81/go_portfolio_admin/apperrors"
	"github.com/Kellerman81/go_portfolio_admin/crud"
	"github.com/Kellerman81/go_portfolio_admin/logger"
	"github.com/Kellerman81/go_portfolio_admin/metrics"
	gin "github.com/gin-gonic/gin"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

// renderDialog renders the modal of an open form. Submitting swaps the
// dialog slot: an empty slot on success, the dialog with errors otherwise.
func renderDialog(res *crud.Resource, form *crud.Form) gomponents.Node {
	var body []gomponents.Node
	if form.APIError != "" {
		body = append(body, html.Div(html.Class("alert alert-danger"), html.Role("alert"), gomponents.Text(form.APIError)))
	}
	if form.LookupError != "" {
		body = append(body, html.Div(html.Class("alert alert-warning"), gomponents.Text(form.LookupError)))
	}
	if form.Mode == crud.ModeDelete {
		body = append(body, html.P(gomponents.Text(
			"Are you sure you want to delete this "+strings.ToLower(res.Entity)+"? This action cannot be undone.")))
	} else {
		for _, fld := range form.Spec.Fields {
			body = append(body, renderField(res, form, fld))
		}
	}

	submitClass := "btn btn-primary"
	if form.Mode == crud.ModeDelete {
		submitClass = "btn btn-danger"
	}

	return html.Div(html.Class("modal d-block"), html.Role("dialog"), gomponents.Attr("tabindex", "-1"),
		html.Div(html.Class("modal-dialog modal-lg"),
			html.Form(html.Class("modal-content"),
				hx.Post(resourceURL(res, "/dialog/submit")),
				hx.Target("#dialog"),
				hx.Swap("innerHTML"),
				html.Div(html.Class("modal-header"),
					html.H5(html.Class("modal-title"), gomponents.Text(form.Title())),
				),
				html.Div(html.Class("modal-body"), gomponents.Group(body)),
				html.Div(html.Class("modal-footer"),
					html.Button(html.Type("button"), html.Class("btn btn-secondary"),
						hx.Post(resourceURL(res, "/dialog/cancel")),
						gomponents.Text("Cancel"),
					),
					html.Button(html.Type("submit"), html.Class(submitClass), gomponents.Text(form.SubmitLabel())),
				),
			),
		),
	)
}

func renderField(res *crud.Resource, form *crud.Form, fld crud.FormField) gomponents.Node {
	id := "field-" + fld.Key
	errMsg := form.Errors[fld.Key]
	class := "form-control"
	if errMsg != "" {
		class += " is-invalid"
	}
	value := form.Values.Get(fld.Key)

	var input gomponents.Node
	switch fld.Kind {
	case crud.FieldTextarea:
		input = html.Textarea(html.Name(fld.Key), html.ID(id), html.Class(class), html.Rows("3"),
			gomponents.If(fld.Placeholder != "", html.Placeholder(fld.Placeholder)),
			gomponents.Text(value))
	case crud.FieldCheckbox:
		return html.Div(html.Class("form-check mb-3"),
			formCheckboxInput(fld.Key, id, value == "true"),
			html.Label(html.Class("form-check-label"), html.For(id), gomponents.Text(fld.Label)),
		)
	case crud.FieldNumber:
		attrs := []gomponents.Node{}
		if fld.Min != 0 || fld.Max != 0 {
			attrs = append(attrs, html.Min(strconv.Itoa(fld.Min)), html.Max(strconv.Itoa(fld.Max)))
		}
		if fld.Step > 0 {
			attrs = append(attrs, gomponents.Attr("step", strconv.Itoa(fld.Step)))
		}
		input = formInput("number", fld.Key, id, class, value, attrs...)
	case crud.FieldSelect:
		class = strings.Replace(class, "form-control", "form-select", 1)
		opts := []gomponents.Node{createOption("", "Select "+fld.Label, value == "")}
		for _, o := range form.Options[fld.Key] {
			opts = append(opts, createOption(o.Value, o.Label, o.Value == value))
		}
		input = html.Select(html.Name(fld.Key), html.ID(id), html.Class(class), gomponents.Group(opts))
	case crud.FieldMultiSelect:
		class = strings.Replace(class, "form-control", "form-select", 1)
		selected := form.Values[fld.Key]
		opts := make([]gomponents.Node, 0, len(form.Options[fld.Key]))
		for _, o := range form.Options[fld.Key] {
			opts = append(opts, createOption(o.Value, o.Label, slices.Contains(selected, o.Value)))
		}
		input = html.Select(html.Name(fld.Key), html.ID(id), html.Class(class), html.Multiple(),
			hx.Post(resourceURL(res, "/dialog/input")), hx.Trigger("change"),
			gomponents.Group(opts))
	case crud.FieldPerOption:
		return renderPerOption(form, fld)
	default:
		typ := string(fld.Kind)
		if fld.Kind == crud.FieldText {
			typ = "text"
		}
		attrs := []gomponents.Node{}
		if fld.Placeholder != "" {
			attrs = append(attrs, html.Placeholder(fld.Placeholder))
		}
		if fld.Kind == crud.FieldPassword {
			attrs = append(attrs, gomponents.Attr("autocomplete", "new-password"))
		}
		input = formInput(typ, fld.Key, id, class, value, attrs...)
	}

	return html.Div(html.Class("mb-3"),
		html.Label(html.Class("form-label"), html.For(id), gomponents.Text(fld.Label)),
		input,
		gomponents.If(errMsg != "", html.Div(html.Class("invalid-feedback"), gomponents.Text(errMsg))),
		gomponents.If(errMsg == "" && fld.Help != "", html.Div(html.Class("form-text"), gomponents.Text(fld.Help))),
	)
}

// renderPerOption renders one input per option selected in the owning multiselect.
func renderPerOption(form *crud.Form, fld crud.FormField) gomponents.Node {
	selected := form.SelectedOptions(fld.Per)
	inputs := make([]gomponents.Node, 0, len(selected))
	for _, opt := range selected {
		key := crud.PerOptionKey(fld.Key, opt.Value)
		errMsg := form.Errors[key]
		class := "form-control"
		if errMsg != "" {
			class += " is-invalid"
		}
		inputs = append(inputs, html.Div(html.Class("mb-2"),
			html.Label(html.Class("form-label"), html.For("field-"+key), gomponents.Text(fld.Label+" ("+opt.Label+")")),
			html.Textarea(html.Name(key), html.ID("field-"+key), html.Class(class), html.Rows("2"),
				gomponents.Text(form.Values.Get(key))),
			gomponents.If(errMsg != "", html.Div(html.Class("invalid-feedback"), gomponents.Text(errMsg))),
		))
	}
	return html.Div(html.Class("mb-3"), gomponents.Group(inputs))
}

// openDialog loads the lookups of a new form and then opens it on the page.
func (cs *Console) openDialog(c *gin.Context, mode crud.Mode, record crud.Row) {
	res := resourceOf(c)
	form := crud.NewForm(res.Form, mode, record)
	if mode != crud.ModeDelete {
		if lookups := res.Form.Lookups(); len(lookups) > 0 {
			opts, err := crud.LoadOptions(c.Request.Context(), cs.pool, cs.backend, lookups)
			if err != nil {
				apperrors.LogClassifiedError(logger.Logtype(logger.StatusWarning, 0), err).
					Str(logger.StrResource, res.Key).
					Msg("Dialog lookups incomplete")
				form.LookupError = "Failed to load options: " + crud.ErrorText(err)
			}
			form.Options = opts
		}
	}
	renderNode(c, http.StatusOK, renderDialog(res, pageOf(c).OpenForm(form)))
}

func (cs *Console) apiDialogCreate(c *gin.Context) {
	cs.openDialog(c, crud.ModeCreate, nil)
}

func (cs *Console) apiDialogEdit(c *gin.Context) {
	cs.openRecordDialog(c, crud.ModeEdit)
}

func (cs *Console) apiDialogDelete(c *gin.Context) {
	cs.openRecordDialog(c, crud.ModeDelete)
}

// openRecordDialog opens a dialog for a row of the displayed page.
func (cs *Console) openRecordDialog(c *gin.Context, mode crud.Mode) {
	record, ok := pageOf(c).Row(c.Param("id"))
	if !ok {
		renderNode(c, http.StatusNotFound, html.Div(html.Class("alert alert-warning"),
			gomponents.Text(resourceOf(c).Entity+" not found on the current page")))
		return
	}
	cs.openDialog(c, mode, record)
}

// apiDialogInput re-renders the dialog with posted input, e.g. after the
// selection of a multiselect changed.
func (cs *Console) apiDialogInput(c *gin.Context) {
	_ = c.Request.ParseForm()
	form := pageOf(c).Input(c.Request.PostForm)
	if form == nil {
		c.Status(http.StatusOK)
		return
	}
	renderNode(c, http.StatusOK, renderDialog(resourceOf(c), form))
}

// apiDialogSubmit performs the mutation of the open dialog. On success the
// dialog slot is emptied and the grid is told to reload once.
func (cs *Console) apiDialogSubmit(c *gin.Context) {
	res := resourceOf(c)
	pg := pageOf(c)
	if err := c.Request.ParseForm(); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var mode crud.Mode
	if open := pg.Dialog(); open != nil {
		mode = open.Mode
	}
	result, form := pg.Submit(c.Request.Context(), cs.backend, cs.validator, c.Request.PostForm)
	switch {
	case result.OK:
		metrics.ObserveMutation(res.Key, string(mode), "success")
		logger.Logtype(logger.StatusInfo, 0).
			Str(logger.StrResource, res.Key).
			Str(logger.StrMode, string(mode)).
			Msg("Mutation done")
		c.Header("HX-Trigger", triggerGridRefresh)
		c.Status(http.StatusOK)
	case form == nil:
		c.Status(http.StatusOK)
	default:
		if result.Invalid {
			metrics.ObserveMutation(res.Key, string(mode), "invalid")
			logger.Logtype(logger.StatusDebug, 0).
				Str(logger.StrResource, res.Key).
				Strs(logger.StrField, slices.Sorted(maps.Keys(form.Errors))).
				Msg("Submission rejected")
		} else {
			metrics.ObserveMutation(res.Key, string(mode), "error")
			apperrors.LogClassifiedError(logger.Logtype(logger.StatusWarning, 0), result.Err).
				Str(logger.StrResource, res.Key).
				Str(logger.StrMode, string(mode)).
				Str(logger.StrID, form.RecordID).
				Msg("Mutation failed")
		}
		renderNode(c, http.StatusOK, renderDialog(res, form))
	}
}

func (cs *Console) apiDialogCancel(c *gin.Context) {
	pageOf(c).Cancel()
	c.Status(http.StatusOK)
}

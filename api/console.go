package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Kellerman81/go_portfolio_admin/apiexternal"
	"github.com/Kellerman81/go_portfolio_admin/apperrors"
	"github.com/Kellerman81/go_portfolio_admin/config"
	"github.com/Kellerman81/go_portfolio_admin/crud"
	"github.com/Kellerman81/go_portfolio_admin/logger"
	"github.com/Kellerman81/go_portfolio_admin/resources"
	"github.com/Kellerman81/go_portfolio_admin/worker"
	"github.com/alitto/pond/v2"
	gin "github.com/gin-gonic/gin"
	"maragu.dev/gomponents"
)

// Backend lists and mutates resources. *apiexternal.Client implements it.
type Backend interface {
	crud.Fetcher
	crud.Lister
	crud.Mutator
}

// backendStats is implemented by backends that keep request statistics.
type backendStats interface {
	GetName() string
	GetStats() apiexternal.StatsSnapshot
}

// Console serves the admin screens.
type Console struct {
	registry  *resources.Registry
	backend   Backend
	sessions  *SessionStore
	validator *crud.Validator
	pool      pond.Pool

	// settings is read per request so reloaded console settings apply to
	// the next page and the next new session.
	settings func() config.ConsoleConfig
}

const (
	ctxResource = "resource"
	ctxPage     = "page"

	// triggerGridRefresh is the htmx event that makes the grid reload.
	triggerGridRefresh = "grid-refresh"
)

func NewConsole(reg *resources.Registry, backend Backend, sessions *SessionStore, pool pond.Pool) *Console {
	return &Console{
		registry:  reg,
		backend:   backend,
		sessions:  sessions,
		validator: crud.NewValidator(),
		pool:      pool,
		settings:  config.GetSettingsConsole,
	}
}

func (cs *Console) title() string {
	return cs.settings().Title
}

// AddConsoleRoutes registers the console pages and their htmx fragments.
func AddConsoleRoutes(router gin.IRouter, cs *Console) {
	router.GET("/", cs.renderLanding)
	router.GET("/health", cs.apiHealth)

	routeradmin := router.Group("/admin/:resource", cs.loadResource)
	{
		routeradmin.GET("", cs.renderResourcePage)
		routeradmin.GET("/grid", cs.apiGrid)
		routeradmin.POST("/search", cs.apiSearch)

		routeradmin.POST("/filters/add", cs.apiFilterAdd)
		routeradmin.POST("/filters/remove/:row", cs.apiFilterRemove)
		routeradmin.POST("/filters/type/:row", cs.apiFilterType)
		routeradmin.POST("/filters/value/:row", cs.apiFilterValue)
		routeradmin.POST("/filters/match", cs.apiFilterMatch)
		routeradmin.POST("/filters/reset", cs.apiFilterReset)

		routeradmin.GET("/dialog/create", cs.apiDialogCreate)
		routeradmin.GET("/dialog/edit/:id", cs.apiDialogEdit)
		routeradmin.GET("/dialog/delete/:id", cs.apiDialogDelete)
		routeradmin.POST("/dialog/input", cs.apiDialogInput)
		routeradmin.POST("/dialog/submit", cs.apiDialogSubmit)
		routeradmin.POST("/dialog/cancel", cs.apiDialogCancel)
	}
}

// loadResource resolves the resource of the url and the session's page for it.
// The browser's cookies travel with every backend request of the handler.
func (cs *Console) loadResource(c *gin.Context) {
	res, ok := cs.registry.Get(c.Param("resource"))
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Request = c.Request.WithContext(apiexternal.WithCookies(c.Request.Context(), c.Request.Cookies()))

	page, created := cs.sessions.get(c).page(res, cs.settings().DefaultPageSize)
	if created {
		cs.loadFilterOptions(c.Request.Context(), page)
	}
	c.Set(ctxResource, res)
	c.Set(ctxPage, page)
	c.Next()
}

func (cs *Console) loadFilterOptions(ctx context.Context, page *crud.Page) {
	lookups := page.Resource.FilterLookups()
	if len(lookups) == 0 {
		return
	}
	opts, err := crud.LoadOptions(ctx, cs.pool, cs.backend, lookups)
	if err != nil {
		apperrors.LogClassifiedError(logger.Logtype(logger.StatusWarning, 0), err).
			Str(logger.StrResource, page.Resource.Key).
			Msg("Filter options incomplete")
	}
	page.SetFilterOptions(opts)
}

func resourceOf(c *gin.Context) *crud.Resource {
	return c.MustGet(ctxResource).(*crud.Resource)
}

func pageOf(c *gin.Context) *crud.Page {
	return c.MustGet(ctxPage).(*crud.Page)
}

// renderNode writes node as html response.
func renderNode(c *gin.Context, status int, node gomponents.Node) {
	var buf strings.Builder
	if err := node.Render(&buf); err != nil {
		c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, "text/html; charset=utf-8", []byte(buf.String()))
}

func (cs *Console) apiHealth(c *gin.Context) {
	h := gin.H{
		"status":    "ok",
		"sessions":  cs.sessions.Len(),
		"lookups":   worker.GetWorkerStats(cs.pool),
		"schedules": worker.GetSchedules(),
	}
	if b, ok := cs.backend.(backendStats); ok {
		h["backend"] = gin.H{"name": b.GetName(), "stats": b.GetStats()}
	}
	c.JSON(http.StatusOK, h)
}

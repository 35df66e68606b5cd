package server

import (
	"net/http"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/store"
	"github.com/labstack/echo/v4"
)

// registerResource mounts list, get, create, update and delete for one
// collection under path.
func registerResource[T any, P any](g *echo.Group, path string, s *Server, pick func(store.Store) store.Collection[T, P]) {
	g.GET(path, func(c echo.Context) error {
		items, err := pick(s.storeFor(c)).List(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, items)
	})

	g.GET(path+"/:id", func(c echo.Context) error {
		item, err := pick(s.storeFor(c)).Get(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, item)
	})

	g.POST(path, func(c echo.Context) error {
		var item T
		if err := c.Bind(&item); err != nil {
			return fail(http.StatusBadRequest, "invalid request body")
		}
		created, err := pick(s.storeFor(c)).Create(c.Request().Context(), item)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, created)
	})

	g.PUT(path+"/:id", func(c echo.Context) error {
		var patch P
		if err := c.Bind(&patch); err != nil {
			return fail(http.StatusBadRequest, "invalid request body")
		}
		updated, err := pick(s.storeFor(c)).Update(c.Request().Context(), c.Param("id"), patch)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, updated)
	})

	g.DELETE(path+"/:id", func(c echo.Context) error {
		if err := pick(s.storeFor(c)).Delete(c.Request().Context(), c.Param("id")); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
}

// handleSummary returns the financial roll-up of one project
func (s *Server) handleSummary(c echo.Context) error {
	ctx := c.Request().Context()
	st := s.storeFor(c)

	project, err := st.Projects().Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	snap, err := store.Load(ctx, st)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, finance.SummarizeProject(project, snap))
}

// handleOverview returns the portfolio dashboard figures
func (s *Server) handleOverview(c echo.Context) error {
	snap, err := store.Load(c.Request().Context(), s.storeFor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, finance.BuildOverview(snap))
}

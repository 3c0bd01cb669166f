package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"docsearch/internal/model"
	"docsearch/internal/searchengine"
)

func registerSearchRoutes(app *fiber.App, deps Dependencies) {
	// Unified search: strategy selection, engine fallback and permission
	// filtering all happen in the service.
	app.Post("/documents/search", func(c *fiber.Ctx) error {
		var q model.SearchQuery
		if err := c.BodyParser(&q); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		page, err := deps.Search.SearchDocuments(c.UserContext(), q, principal(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(page)
	})

	app.Get("/documents/facets", func(c *fiber.Ctx) error {
		q, err := searchQueryFromParams(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		}

		facets, err := deps.Search.GetFacets(c.UserContext(), q, principal(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(facets)
	})

	app.Get("/documents/autocomplete", func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		candidates, err := deps.Search.Autocomplete(
			c.UserContext(),
			c.Query("prefix"),
			c.Query("field", model.AutocompleteFieldAll),
			limit,
			principal(c),
		)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"suggestions": candidates})
	})

	// Direct per-engine queries bypass the fallback chain. Diagnostics only.
	for _, engine := range []string{searchengine.EngineSolr, searchengine.EngineOpenSearch, searchengine.EngineTypeSense} {
		engine := engine
		app.Get("/search/"+engine, func(c *fiber.Ctx) error {
			term := c.Query("q")
			if term == "" {
				return writeError(c, fiber.StatusBadRequest, "QUERY_REQUIRED", "q is required")
			}
			hits, err := deps.Search.SearchWithEngine(c.UserContext(), engine, term)
			if err != nil {
				return writeServiceError(c, err)
			}
			return c.JSON(fiber.Map{"engine": engine, "hits": hits})
		})
	}

	// Side-by-side engine comparison; never fails, dead engines come back empty
	app.Get("/search/compare", func(c *fiber.Ctx) error {
		term := c.Query("q")
		if term == "" {
			return writeError(c, fiber.StatusBadRequest, "QUERY_REQUIRED", "q is required")
		}
		return c.JSON(deps.Comparator.Compare(c.UserContext(), term))
	})
}

func principal(c *fiber.Ctx) string {
	return c.Get(PrincipalHeader)
}

// searchQueryFromParams builds a SearchQuery from URL query parameters, used
// by the GET endpoints. Time bounds are RFC 3339.
func searchQueryFromParams(c *fiber.Ctx) (model.SearchQuery, error) {
	q := model.SearchQuery{
		Query:    c.Query("query"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Author:   c.Query("author"),
	}

	var err error
	if q.CreatedAfter, err = timeParam(c, "created_after"); err != nil {
		return q, err
	}
	if q.CreatedBefore, err = timeParam(c, "created_before"); err != nil {
		return q, err
	}
	if q.UpdatedAfter, err = timeParam(c, "updated_after"); err != nil {
		return q, err
	}
	if q.UpdatedBefore, err = timeParam(c, "updated_before"); err != nil {
		return q, err
	}
	return q, nil
}

func timeParam(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return &t, nil
}

package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"docsearch/internal/metrics"
	"docsearch/internal/model"
	"docsearch/internal/service"
)

// PrincipalHeader carries the caller identity used for permission filtering.
// An absent header means an anonymous caller.
const PrincipalHeader = "X-User-ID"

// Dependencies bundles everything the HTTP layer needs. Handlers stay thin;
// all business logic lives in the services.
type Dependencies struct {
	DB         *sql.DB
	Documents  service.DocumentService
	Search     service.SearchService
	Comparator service.EngineComparator
	Metrics    *metrics.SearchMetrics
	Registry   prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	registerHealthRoutes(app, deps)
	// Search routes go first so /documents/facets and /documents/autocomplete
	// are matched before the /documents/:id parameter route.
	registerSearchRoutes(app, deps)
	registerDocumentRoutes(app, deps)
}

func registerHealthRoutes(app *fiber.App, deps Dependencies) {
	// Health endpoint: checks DB connectivity only
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := deps.DB.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Backward-compatible simple liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Per-engine reachability. Always 200: a dead engine is degraded service,
	// not an error response.
	app.Get("/health/search-engines", func(c *fiber.Ctx) error {
		health := deps.Search.EngineHealth(c.UserContext())
		status := "healthy"
		for _, up := range health {
			if !up {
				status = "degraded"
				break
			}
		}
		return c.JSON(fiber.Map{"status": status, "engines": health})
	})

	// In-process search operation counters, distinct from /metrics
	app.Get("/health/metrics", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"operations": deps.Metrics.Snapshot()})
	})

	if deps.Registry != nil {
		promHandler := fasthttpadaptor.NewFastHTTPHandler(
			promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}),
		)
		app.Get("/metrics", func(c *fiber.Ctx) error {
			promHandler(c.Context())
			return nil
		})
	}
}

func registerDocumentRoutes(app *fiber.App, deps Dependencies) {
	// List documents endpoint with limit & offset
	app.Get("/documents", func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := deps.Documents.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	})

	// Create document (JSON body)
	app.Post("/documents", func(c *fiber.Ctx) error {
		var input model.DocumentInput
		if err := c.BodyParser(&input); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		doc, err := deps.Documents.Create(c.UserContext(), input)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	})

	// Get document by ID
	app.Get("/documents/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := deps.Documents.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	})

	// Full update of a document
	app.Put("/documents/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var input model.DocumentInput
		if err := c.BodyParser(&input); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		doc, err := deps.Documents.Update(c.UserContext(), id, input)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	})

	// Delete document by ID
	app.Delete("/documents/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		deleted, err := deps.Documents.Delete(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if !deleted {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Push one document into every engine index
	app.Post("/documents/:id/index", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		result, err := deps.Documents.IndexDocument(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(result)
	})

	// Rebuild every engine index from the relational store
	app.Post("/reindex", func(c *fiber.Ctx) error {
		result, err := deps.Documents.ReindexAll(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(result)
	})
}

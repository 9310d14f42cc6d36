package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sparesledger/internal/config"
	"sparesledger/internal/domain"
	applog "sparesledger/internal/log"
	"sparesledger/web"
)

// ErrorHandler logs the failure and renders a page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		applog.Info(c, "server.client_error", map[string]any{"code": fe.Code})
		return c.Status(fe.Code).Render("notfound", fiber.Map{"Message": "That request could not be handled"})
	}
	applog.Error(c, "server.error", err, nil)
	// Avoid leaking internals; best-effort render
	if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
		"Message": "Something went wrong. Please try again.",
	}); rerr != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
	}
	return nil
}

func skipLimiter(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/static/") || p == "/metrics" || p == "/healthz"
}

// NewApp builds the fiber app with every middleware and route.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        web.Views(),
		ErrorHandler: ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(Tracing())
	app.Use(Metrics())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
	}))
	app.Use(helmet.New())
	app.Use("/static", filesystem.New(filesystem.Config{Root: web.Static()}))
	app.Use(LoadSession(deps.Roles))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: time.Minute,
		Next:       skipLimiter,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"has_form_token": c.FormValue("csrf") != ""})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Health & metrics ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// ---------- Role picker ----------
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)

	// ---------- Pages ----------
	signedIn := RequireSession()
	admin := RequireRole(domain.RoleAdmin)
	keeper := RequireRole(domain.RoleStoreKeeper)

	app.Get("/", signedIn, deps.DashboardHandler.Home)

	inv := deps.InventoryHandler
	app.Get("/inventory", signedIn, inv.List)
	app.Get("/inventory/new", admin, inv.NewForm)
	app.Post("/inventory", admin, inv.Create)
	app.Get("/inventory/:id/edit", admin, inv.EditForm)
	app.Post("/inventory/:id", admin, inv.Update)
	app.Get("/inventory/:id/delete", admin, inv.DeleteConfirm)
	app.Post("/inventory/:id/delete", admin, inv.Delete)

	txh := deps.TransactionHandler
	app.Get("/transactions", signedIn, txh.List)
	app.Post("/transactions", keeper, txh.Post)
	app.Post("/transactions/:id/verify", admin, txh.Verify)

	// ---------- JSON API (read-only) ----------
	api := app.Group("/api/v1")
	api.Get("/items", deps.APIHandler.Items)
	api.Get("/items/low-stock", deps.APIHandler.LowStock)
	api.Get("/items/:id", deps.APIHandler.Item)
	api.Get("/transactions", deps.APIHandler.Transactions)
	api.Get("/summary", deps.APIHandler.Summary)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}

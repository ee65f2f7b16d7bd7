package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/awakeapp/AWAKE-sub000/internal/admin"
	"github.com/awakeapp/AWAKE-sub000/internal/auth"
	"github.com/awakeapp/AWAKE-sub000/internal/config"
	"github.com/awakeapp/AWAKE-sub000/internal/debts"
	"github.com/awakeapp/AWAKE-sub000/internal/domain"
	"github.com/awakeapp/AWAKE-sub000/internal/ledger"
	"github.com/awakeapp/AWAKE-sub000/internal/recurring"
	"github.com/awakeapp/AWAKE-sub000/internal/reports"
	"github.com/awakeapp/AWAKE-sub000/internal/router"
	"github.com/awakeapp/AWAKE-sub000/internal/summary"
	"github.com/awakeapp/AWAKE-sub000/internal/syncrelay"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("error creating pgx pool: %v", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		cancel()
		log.Fatalf("error pinging database: %v", err)
	}
	cancel()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
			}
			return domain.FiberError(c, err)
		},
	})

	app.Use(router.CorsMiddleware(cfg.Server.CORSOrigin))
	app.Use(requestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	tokens := auth.NewTokens(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHours)*time.Hour)
	authMW := router.JWTMiddleware(tokens, pool)

	committer := ledger.NewCommitter(pool)
	ledgerRepo := ledger.NewRepo(pool)
	debtsRepo := debts.NewRepo(pool)
	recurringRepo := recurring.NewRepo(pool)

	r := &router.Router{
		AuthHandler:      auth.NewHandler(pool, tokens),
		LedgerHandler:    ledger.NewHandler(ledgerRepo, committer),
		DebtsHandler:     debts.NewHandler(debtsRepo, debts.NewSettler(pool, committer)),
		RecurringHandler: recurring.NewHandler(recurringRepo, recurring.NewRunner(recurringRepo, committer)),
		SyncHandler:      syncrelay.NewHandler(syncrelay.NewRelay(pool)),
		SummaryHandler:   &summary.Handler{Repo: summary.Repo{DB: pool}},
		ReportsHandler:   reports.NewHandler(pool),
		AdminHandler:     admin.NewHandler(pool),
		AuthMW:           authMW,
		AdminMW:          admin.RequireAdminAPIKey(cfg.Admin.APIKey),
		AuthLimiter:      router.RateLimitAuth(cfg.RateLimit.AuthPerMinute),
		WriteLimit:       router.RateLimitWrite(cfg.RateLimit.WritePerMinute),
	}
	r.RegisterRoutes(app)

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	log.Println("Listening on", addr)
	log.Fatal(app.Listen(addr))
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		log.Printf("%s %s %d %s", c.Method(), c.Path(), status, time.Since(start))
		return err
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/asciiart"
	"github.com/Skotchmaster/marketplace/internal/config"
	"github.com/Skotchmaster/marketplace/internal/db"
	"github.com/Skotchmaster/marketplace/internal/es"
	"github.com/Skotchmaster/marketplace/internal/httpserver"
	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/retry"
	"github.com/Skotchmaster/marketplace/internal/seed"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/session"
	"github.com/Skotchmaster/marketplace/internal/throttle"
)

const usage = `usage: marketplace [command]

commands:
  shell               interactive terminal session (default)
  serve               HTTP API
  seed [flags]        create fake users and products
  migrate             create or update the schema
  orders ship <id>    mark a pending order as shipped`

type app struct {
	cfg    config.Config
	log    *slog.Logger
	db     *gorm.DB
	events mykafka.Publisher

	auth    *service.AuthService
	catalog *service.CatalogService
	cart    *service.CartService
	orders  *service.OrderService
}

func main() {
	cfg := config.Load()

	cmd, args := "shell", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var (
		logger  *slog.Logger
		closeFn = func() error { return nil }
	)
	if cmd == "shell" {
		// stdout belongs to the menu
		l, c, err := logging.OpenFile(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		logger, closeFn = l, c
	} else {
		logger = logging.New(cfg.LogLevel, os.Stdout)
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	if err := run(ctx, cfg, logger, cmd, args); err != nil {
		logger.Error("command_failed", "cmd", cmd, "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		closeFn()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, cmd string, args []string) error {
	switch cmd {
	case "shell", "serve", "seed", "migrate", "orders":
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	switch cmd {
	case "serve":
		return a.serve(ctx)
	case "seed":
		return a.seed(ctx, args)
	case "migrate":
		// db.Open already migrated
		logger.Info("migrated")
		return nil
	case "orders":
		return a.ordersCmd(ctx, args)
	default:
		return session.New(os.Stdin, os.Stdout, a.auth, a.catalog, a.cart, a.orders).Run(ctx)
	}
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	gdb, err := db.Open(ctx, cfg.DatabaseURL, nil)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: logger, db: gdb}
	a.events = mykafka.New(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)

	r := &repo.GormRepo{DB: gdb}

	var index service.SearchIndex
	if cfg.ESURL != "" {
		ix, err := es.NewIndex(es.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("es_disabled", "error", err)
		} else {
			index = ix
		}
	}

	rc := retry.DefaultConfig()
	if cfg.CheckoutMaxAttempts > 0 {
		rc.MaxAttempts = cfg.CheckoutMaxAttempts
	}

	a.auth = &service.AuthService{
		Repo:      r,
		Events:    a.events,
		Index:     index,
		Limiter:   throttle.New(cfg.LoginRate, cfg.LoginBurst),
		JWTSecret: cfg.JWTSecret,
		AccessTTL: cfg.AccessTTL,
		Admins:    cfg.AdminUsers,
	}
	a.catalog = &service.CatalogService{
		Repo:   r,
		Events: a.events,
		Index:  index,
		Images: asciiart.NewFetcher(cfg.HTTPTimeout, cfg.ImageWidth),
	}
	a.cart = &service.CartService{Repo: r, Events: a.events}
	a.orders = &service.OrderService{Repo: r, Events: a.events, Retry: rc}
	return a, nil
}

func (a *app) close() {
	if err := a.events.Close(); err != nil {
		a.log.Error("kafka_close_error", "error", err)
	}
	if err := db.Close(a.db); err != nil {
		a.log.Error("db_close_error", "error", err)
	}
}

func (a *app) serve(ctx context.Context) error {
	if err := a.cfg.ValidateServe(); err != nil {
		return err
	}

	e := httpserver.New(&httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: a.auth, SecureCookie: a.cfg.CookieSecure},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: a.catalog},
		CartHandler:    &httpserver.CartHTTP{Svc: a.cart, Orders: a.orders},
		OrderHandler:   &httpserver.OrderHTTP{Svc: a.orders},
		JWTSecret:      a.cfg.JWTSecret,
		Logger:         a.log,
		Ready: func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(a.cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.log.Info("shutdown_complete")
	return nil
}

func (a *app) seed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	users := fs.Int("users", 10, "number of users")
	products := fs.Int("products", 5, "products per user")
	image := fs.String("image", "", "image URL rendered for every product")
	seedVal := fs.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := seed.New(a.auth, a.catalog, *seedVal).Run(ctx, seed.Options{
		Users:           *users,
		ProductsPerUser: *products,
		ImageURL:        *image,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d users and %d products.\n", res.Users, res.Products)
	return nil
}

func (a *app) ordersCmd(ctx context.Context, args []string) error {
	if len(args) != 2 || args[0] != "ship" {
		return errors.New("usage: marketplace orders ship <id>")
	}
	id, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid order id %q", args[1])
	}
	order, err := a.orders.Ship(ctx, uint(id))
	if err != nil {
		return err
	}
	fmt.Printf("Order #%d is now %s.\n", order.ID, order.Status)
	return nil
}

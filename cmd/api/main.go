package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rohitpatil/agrimart/internal/auth"
	"github.com/rohitpatil/agrimart/internal/cart"
	"github.com/rohitpatil/agrimart/internal/catalog"
	"github.com/rohitpatil/agrimart/internal/checkout"
	"github.com/rohitpatil/agrimart/internal/config"
	"github.com/rohitpatil/agrimart/internal/httpx"
	"github.com/rohitpatil/agrimart/internal/inventory"
	kafkax "github.com/rohitpatil/agrimart/internal/kafka"
	"github.com/rohitpatil/agrimart/internal/leases"
	"github.com/rohitpatil/agrimart/internal/logging"
	"github.com/rohitpatil/agrimart/internal/orders"
	"github.com/rohitpatil/agrimart/internal/payment"
	"github.com/rohitpatil/agrimart/internal/postgres"
	"github.com/rohitpatil/agrimart/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logging.New(cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer (one inbox for all order topics)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)

	// Stores & services
	ledger := &inventory.Ledger{DB: db}
	orderRepo := &orders.Repo{DB: db}
	productRepo := &catalog.Repo{DB: db}
	leaseRepo := &leases.Repo{DB: db}
	carts := &cart.Store{Redis: rdb}

	gateway := payment.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpaySecret, cfg.RazorpayURL)

	checkoutSvc := &checkout.Service{
		Carts:       carts,
		Ledger:      ledger,
		Orders:      orderRepo,
		Gateway:     gateway,
		Producer:    prod,
		Redis:       rdb,
		ServiceName: cfg.ServiceName,
		Log:         log,
	}
	orderSvc := &orders.Service{
		Repo:        orderRepo,
		Restorer:    ledger,
		Producer:    prod,
		ServiceName: cfg.ServiceName,
		Log:         log,
	}
	paymentSvc := &payment.Service{
		Secret:      cfg.RazorpaySecret,
		Orders:      orderRepo,
		Producer:    prod,
		Redis:       rdb,
		ServiceName: cfg.ServiceName,
		Log:         log,
	}

	// Handlers
	router := httpx.NewRouter()

	ph := &httpx.ProductsHandler{Repo: productRepo}
	ph.RegisterPublic(router)

	pay := &httpx.PaymentHandler{Gateway: gateway, Service: paymentSvc, JWTSecret: cfg.JWTSecret}
	pay.Register(router)

	ch := &httpx.CartHandler{Store: carts}
	co := &httpx.CheckoutHandler{Service: checkoutSvc}
	oh := &httpx.OrdersHandler{Repo: orderRepo, Service: orderSvc, Redis: rdb}
	lh := &httpx.LeasesHandler{Repo: leaseRepo}

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.JWTSecret))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleBuyer))
			ch.Register(r)
			co.Register(r)
			oh.RegisterBuyer(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleVendor))
			oh.RegisterVendor(r)
			ph.RegisterVendor(r)
		})
		// Leases involve buyers as tenants and landowners as deciders.
		lh.Register(r)
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}

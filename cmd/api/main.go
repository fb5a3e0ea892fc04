package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/mwangikb/jikoni-backend/internal/modules/auth"
	"github.com/mwangikb/jikoni-backend/internal/modules/checkout"
	"github.com/mwangikb/jikoni-backend/internal/modules/menu"
	"github.com/mwangikb/jikoni-backend/internal/modules/order"
	"github.com/mwangikb/jikoni-backend/internal/modules/payment"
	"github.com/mwangikb/jikoni-backend/internal/modules/reservation"
	"github.com/mwangikb/jikoni-backend/internal/modules/table"
	"github.com/mwangikb/jikoni-backend/internal/modules/user"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, relying on environment")
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Fatal("JWT_SECRET must be set")
	}
	staffOnly := auth.RequireRole(jwtSecret, user.RoleAdmin, user.RoleStaff)
	adminOnly := auth.RequireRole(jwtSecret, user.RoleAdmin)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router, adminOnly)

	authService := auth.NewService(userRepo, jwtSecret)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Menu & Tables ───────────────────────────────────────
	menuRepo := menu.NewPostgresRepository(db)
	menuService := menu.NewService(menuRepo)
	menu.NewHandler(menuService).RegisterRoutes(router, staffOnly)

	tableRepo := table.NewPostgresRepository(db)
	tableService := table.NewService(tableRepo)
	table.NewHandler(tableService).RegisterRoutes(router, staffOnly)

	// ── Orders ──────────────────────────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo)
	order.NewHandler(orderService).RegisterRoutes(router, staffOnly)

	// ── Payments ────────────────────────────────────────────
	gateway := payment.NewDarajaClient(payment.Config{
		ConsumerKey:    os.Getenv("MPESA_CONSUMER_KEY"),
		ConsumerSecret: os.Getenv("MPESA_CONSUMER_SECRET"),
		ShortCode:      os.Getenv("MPESA_SHORT_CODE"),
		PassKey:        os.Getenv("MPESA_PASS_KEY"),
		CallbackURL:    os.Getenv("MPESA_CALLBACK_URL"),
		Environment:    os.Getenv("MPESA_ENVIRONMENT"),
	})
	paymentRepo := payment.NewPostgresRepository(db)
	paymentService := payment.NewService(paymentRepo, gateway, orderService)
	payment.NewHandler(paymentService).RegisterRoutes(router, staffOnly)

	// ── Guest checkout ──────────────────────────────────────
	checkoutManager := checkout.NewManager(paymentService)
	checkout.NewHandler(checkoutManager).RegisterRoutes(router)

	// ── Reservations ────────────────────────────────────────
	reservationRepo := reservation.NewPostgresRepository(db)
	reservationService := reservation.NewService(reservationRepo)
	reservation.NewHandler(reservationService).RegisterRoutes(router, staffOnly)

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Jikoni API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

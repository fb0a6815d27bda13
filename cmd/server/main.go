package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/payrollhq/payroll-engine/internal/config"
	"github.com/payrollhq/payroll-engine/internal/handler"
	"github.com/payrollhq/payroll-engine/internal/repository"
	"github.com/payrollhq/payroll-engine/internal/service"
	"github.com/payrollhq/payroll-engine/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	salaryRepo := repository.NewSalaryRepository(db)
	advanceRepo := repository.NewAdvanceRepository(db)

	payrollService := service.NewPayrollService(salaryRepo, cfg)
	advanceService := service.NewAdvanceService(advanceRepo, redisClient, cfg)
	settlementService := service.NewSettlementService(salaryRepo, advanceRepo, redisClient, cfg)

	payrollHandler := handler.NewPayrollHandler(payrollService, settlementService)
	advanceHandler := handler.NewAdvanceHandler(advanceService, settlementService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(payrollHandler, advanceHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	payrollHandler *handler.PayrollHandler,
	advanceHandler *handler.AdvanceHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/salaries", payrollHandler.CreateSalaryRecord).Methods("POST")
	api.HandleFunc("/salaries/{employeeId}/{year}/{month}", payrollHandler.GetSalaryRecord).Methods("GET")
	api.HandleFunc("/salaries/{employeeId}/{year}/{month}/approve", payrollHandler.ApproveSalaryRecord).Methods("POST")
	api.HandleFunc("/salaries/{employeeId}/{year}/{month}/pay", payrollHandler.PaySalaryRecord).Methods("POST")
	api.HandleFunc("/salaries/{employeeId}/{year}/{month}/cancel", payrollHandler.CancelSalaryRecord).Methods("POST")
	api.HandleFunc("/salaries/{employeeId}/{year}/{month}/settle", payrollHandler.SettlePeriod).Methods("POST")

	api.HandleFunc("/advances", advanceHandler.RequestAdvance).Methods("POST")
	api.HandleFunc("/advances/{advanceId}", advanceHandler.GetAdvance).Methods("GET")
	api.HandleFunc("/advances/{advanceId}", advanceHandler.DeleteAdvance).Methods("DELETE")
	api.HandleFunc("/advances/{advanceId}/approve", advanceHandler.ApproveAdvance).Methods("POST")
	api.HandleFunc("/advances/{advanceId}/reject", advanceHandler.RejectAdvance).Methods("POST")
	api.HandleFunc("/advances/{advanceId}/pay", advanceHandler.MarkPaid).Methods("POST")

	api.HandleFunc("/employees/{employeeId}/advances", advanceHandler.ListAdvances).Methods("GET")
	api.HandleFunc("/employees/{employeeId}/advances/pending", advanceHandler.PendingAdvances).Methods("GET")
	api.HandleFunc("/employees/{employeeId}/advances/outstanding", advanceHandler.Outstanding).Methods("GET")

	return router
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/payrollhq/payroll-engine/internal/config"
	"github.com/payrollhq/payroll-engine/internal/repository"
	"github.com/payrollhq/payroll-engine/internal/service"
)

func main() {
	log.Println("Starting payroll scheduler...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	salaryRepo := repository.NewSalaryRepository(db)
	advanceRepo := repository.NewAdvanceRepository(db)
	settlementService := service.NewSettlementService(salaryRepo, advanceRepo, redisClient, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Settle all approved salary records of the previous month.
	_, err = c.AddFunc(cfg.Scheduler.SettlementCron, func() {
		month, year := previousPeriod(time.Now().In(location))
		log.Printf("Running period settlement for %s/%d...", month, year)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := settlementService.RunPeriodSettlement(ctx, month, year); err != nil {
			log.Printf("Period settlement for %s/%d finished with errors: %v", month, year, err)
			return
		}
		log.Printf("Period settlement for %s/%d completed", month, year)
	})
	if err != nil {
		log.Fatalf("Error scheduling settlement job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func previousPeriod(now time.Time) (month string, year int) {
	y, m := now.Year(), int(now.Month())
	m--
	if m == 0 {
		m = 12
		y--
	}
	return fmt.Sprintf("%02d", m), y
}

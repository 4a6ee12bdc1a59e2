package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/emicollect/internal/backup"
	backupStore "github.com/MrJamesThe3rd/emicollect/internal/backup/store"
	"github.com/MrJamesThe3rd/emicollect/internal/cloud"
	"github.com/MrJamesThe3rd/emicollect/internal/config"
	"github.com/MrJamesThe3rd/emicollect/internal/customer"
	customerStore "github.com/MrJamesThe3rd/emicollect/internal/customer/store"
	"github.com/MrJamesThe3rd/emicollect/internal/database"
	emiHttp "github.com/MrJamesThe3rd/emicollect/internal/http"
	backupHandler "github.com/MrJamesThe3rd/emicollect/internal/http/backup"
	customerHandler "github.com/MrJamesThe3rd/emicollect/internal/http/customer"
	dashboardHandler "github.com/MrJamesThe3rd/emicollect/internal/http/dashboard"
	eventsHandler "github.com/MrJamesThe3rd/emicollect/internal/http/events"
	loanHandler "github.com/MrJamesThe3rd/emicollect/internal/http/loan"
	"github.com/MrJamesThe3rd/emicollect/internal/loan"
	loanStore "github.com/MrJamesThe3rd/emicollect/internal/loan/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DB.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	hub := database.NewHub()

	var loanOpts []loan.Option
	if cfg.Settlement.FixedWeekAdvance {
		loanOpts = append(loanOpts, loan.WithScheduleRule(loan.AdvanceFixedWeek))
	}

	var backupOpts []backup.Option
	if cfg.Cloud.BaseURL != "" {
		backupOpts = append(backupOpts, backup.WithCloud(cloud.NewClient(cfg.Cloud.BaseURL, cfg.Cloud.Token)))
	}

	var (
		customerService = customer.NewService(customerStore.New(db, hub))
		loanService     = loan.NewService(loanStore.New(db, hub), loanOpts...)
		backupService   = backup.NewService(backupStore.New(db, hub), cfg.Backup.Dir, backupOpts...)
	)

	var (
		customersH = customerHandler.NewHandler(customerService, loanService)
		loansH     = loanHandler.NewHandler(loanService, customerService)
		backupH    = backupHandler.NewHandler(backupService)
		dashboardH = dashboardHandler.NewHandler(loanService)
		eventsH    = eventsHandler.NewHandler(hub)
	)

	router := emiHttp.New(customersH, loansH, backupH, dashboardH, eventsH)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "addr", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

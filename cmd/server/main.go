package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/kmehta/water-intake-tracker/internal/config"
	"github.com/kmehta/water-intake-tracker/internal/database"
	"github.com/kmehta/water-intake-tracker/internal/handlers"
	"github.com/kmehta/water-intake-tracker/internal/jobs"
	"github.com/kmehta/water-intake-tracker/internal/repository"
	"github.com/kmehta/water-intake-tracker/internal/scheduler"
	"github.com/kmehta/water-intake-tracker/internal/services"
	"github.com/kmehta/water-intake-tracker/pkg/email"
	"github.com/kmehta/water-intake-tracker/pkg/logger"
	"github.com/kmehta/water-intake-tracker/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Email dispatcher ---
	var dispatcher email.Dispatcher
	smtp := email.NewSMTPDispatcher(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword)
	if smtp.Configured() {
		dispatcher = smtp
	} else {
		logger.Log.Warn("SMTP credentials not configured, emails will only be logged")
		dispatcher = email.LogDispatcher{}
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	emailConfigRepo := repository.NewEmailConfigRepository(db)

	var recordStore repository.RecordStore
	var reminderLog repository.ReminderLogStore
	if cfg.StoreBackend == "memory" {
		logger.Log.Info("Using in-memory record store")
		recordStore = repository.NewMemoryRecordStore()
		reminderLog = repository.NewMemoryReminderLog()
	} else {
		recordStore = repository.NewRecordRepository(db)
		reminderLog = repository.NewReminderLogRepository(db)
	}

	// --- Services ---
	userService := services.NewUserService(userRepo, dispatcher, cfg)
	recordService := services.NewRecordService(recordStore)
	statsService := services.NewStatsService()
	calendarService := services.NewCalendarService()
	exportService := services.NewExportService()
	reminderService := services.NewReminderService(userRepo, recordService, emailConfigRepo, reminderLog, dispatcher, cfg)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	recordHandler := handlers.NewRecordHandler(recordService, userService)
	calendarHandler := handlers.NewCalendarHandler(recordService, userService, calendarService, statsService)
	exportHandler := handlers.NewExportHandler(recordService, userService, exportService)
	reminderHandler := handlers.NewReminderHandler(reminderService, userService)
	adminHandler := handlers.NewAdminHandler(emailConfigRepo)

	// --- Scheduler ---
	reminderJob := jobs.NewReminderJob(reminderService)
	scheduler.StartReminderJobs(reminderJob, cfg)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/users/verify", userHandler.VerifyEmailHandler).Methods("GET")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/settings", userHandler.UpdateSettingsHandler).Methods("PATCH")
	protectedUserRoutes.HandleFunc("/power-verify", userHandler.VerifyPowerUserHandler).Methods("POST")

	// Record routes
	recordRoutes := router.PathPrefix("/records").Subrouter()
	recordRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	recordRoutes.HandleFunc("", recordHandler.ListRecordsHandler).Methods("GET")
	recordRoutes.HandleFunc("/migrate", recordHandler.MigrateRecordsHandler).Methods("POST")
	recordRoutes.HandleFunc("/today/progress", recordHandler.TodayProgressHandler).Methods("GET")
	recordRoutes.HandleFunc("/{date}", recordHandler.GetRecordHandler).Methods("GET")
	recordRoutes.HandleFunc("/{date}", recordHandler.SaveRecordHandler).Methods("PUT")
	recordRoutes.HandleFunc("/{date}", recordHandler.DeleteRecordHandler).Methods("DELETE")
	recordRoutes.HandleFunc("/{date}/quick-add", recordHandler.QuickAddHandler).Methods("POST")

	// Calendar and statistics routes
	calendarRoutes := router.PathPrefix("/calendar").Subrouter()
	calendarRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	calendarRoutes.HandleFunc("/{year}/{month}", calendarHandler.RenderMonthHandler).Methods("GET")

	statsRoutes := router.PathPrefix("/statistics").Subrouter()
	statsRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	statsRoutes.HandleFunc("", calendarHandler.StatisticsHandler).Methods("GET")

	// CSV export
	exportRoutes := router.PathPrefix("/export").Subrouter()
	exportRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	exportRoutes.HandleFunc("", exportHandler.ExportCSVHandler).Methods("GET")

	// Reminder routes
	reminderRoutes := router.PathPrefix("/reminders").Subrouter()
	reminderRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	reminderRoutes.HandleFunc("/test", reminderHandler.SendTestEmailHandler).Methods("POST")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/email-config", adminHandler.GetEmailConfigHandler).Methods("GET")
	adminRoutes.HandleFunc("/email-config", adminHandler.UpdateEmailConfigHandler).Methods("PUT")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AppURL, "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}

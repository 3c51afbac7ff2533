package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"student_manager/internal/app"
	"student_manager/internal/infra/config"
	"student_manager/internal/infra/console"
	idb "student_manager/internal/infra/database"
	"student_manager/internal/infra/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	fmt.Println("Welcome to Student Management System")
	fmt.Println("--------------------------------------------------")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		return 1
	}

	logCloser, err := logger.Init(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not initialize logger: %v\n", err)
		return 1
	}
	defer logCloser.Close()
	mainLogger := logger.Component("main")
	mainLogger.WithField("environment", cfg.Environment).Info("Configuration loaded")

	fmt.Printf("Connecting to database: %s\n", cfg.Database.Name)
	fmt.Printf("Host: %s\n", cfg.Database.Address())
	fmt.Printf("User: %s\n\n", cfg.Database.User)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database Session
	session := idb.NewSession(cfg.Database.DSN(), cfg.Database.Name+"@"+cfg.Database.Address())
	if err := session.Connect(ctx); err != nil {
		mainLogger.WithError(err).Error("Could not connect to database")
		fmt.Println("Failed to connect to database. Exiting...")
		return 1
	}
	defer func() {
		if err := session.Disconnect(); err != nil {
			mainLogger.WithError(err).Warn("Error closing database connection")
			return
		}
		fmt.Println("Database connection closed")
	}()
	fmt.Println("Successfully connected to PostgreSQL database")
	mainLogger.Info("Database connection established successfully.")

	studentRepo := idb.NewPostgresStudentRepository(session.DB())
	studentService := app.NewStudentService(studentRepo, logger.Component("student_service"))
	shell := console.NewShell(os.Stdin, os.Stdout, studentService, logger.Component("console"))

	// The shell blocks on stdin; run it aside so a signal can still end the session.
	done := make(chan error, 1)
	go func() { done <- shell.Run(ctx) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		fmt.Println()
		mainLogger.Info("Shutdown signal received")
		return 0
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		mainLogger.WithError(err).Error("Menu loop stopped with error")
		return 1
	}
	return 0
}

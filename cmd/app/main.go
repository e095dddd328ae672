package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	authservice "ride-dispatch/internal/auth-service"
	"ride-dispatch/internal/config"
	dispatchservice "ride-dispatch/internal/dispatch-service"
	"ride-dispatch/internal/mylogger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: app <dispatch-service|auth-service>")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file, using environment")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mylog := mylogger.New(cfg.Log.Level)
	ctx := context.Background()

	switch os.Args[1] {
	case "dispatch-service":
		err = dispatchservice.Execute(ctx, mylog, cfg)
	case "auth-service":
		err = authservice.Execute(ctx, mylog, cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown service: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		mylog.Error("service exited with error", err)
		os.Exit(1)
	}
}

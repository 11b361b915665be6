package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/idilettant/seoaudit/cmd/seoaudit/app"
	"github.com/idilettant/seoaudit/internal/limiter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{}

	clock := limiter.NewClock()

	err := app.Run(ctx, os.Args, os.Stdout, os.Stderr, httpClient, clock)
	if err != nil {
		stop()
		log.Print(err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tasksapi/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().Execute(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}

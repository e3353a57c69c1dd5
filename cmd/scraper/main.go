package main

import (
	"context"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/riskibarqy/volley-sync/cmd/scraper/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/armstjc/ncaa-stats-py-sub000/cmd/ncaastats/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	commands.ExecuteContext(ctx)
}

// Package main wires the landgiver service process lifecycle.
//
// It reads config from flags/env and runs the leasing server until shutdown.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	landgivercmd "github.com/cazala/landgiver/internal/cmd/landgiver"
)

func main() {
	cfg, err := landgivercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[LANDGIVER] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := landgivercmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/osvaldoandrade/edgeboot/pkg/edgebootsdk"
)

func main() {
	remote := os.Getenv("EDGEBOOT_REMOTE_URL")
	if remote == "" {
		fmt.Fprintln(os.Stderr, "EDGEBOOT_REMOTE_URL is required (URL of the application repository)")
		os.Exit(1)
	}

	cfg := edgebootsdk.DefaultConfig(remote)
	if dir := os.Getenv("EDGEBOOT_CHECKOUT_DIR"); dir != "" {
		cfg.CheckoutDir = dir
	}
	cfg.ExecRoot = cfg.CheckoutDir
	cfg.Command = []string{"ls", "-la"}

	client, err := edgebootsdk.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "new: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status, err := client.Status(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "status: %v\n", err)
	} else {
		fmt.Printf("checkout %s state=%s head=%s\n", status.Path, status.State, status.HeadHash)
	}

	code, err := client.Run(ctx, func(from, to edgebootsdk.Phase, err error) {
		fmt.Printf("phase %s -> %s\n", from, to)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

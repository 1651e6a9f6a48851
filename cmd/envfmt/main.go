// Command envfmt prints the parameters stored below a path in AWS Systems
// Manager Parameter Store as a .env file or a php-fpm pool fragment.
//
//	envfmt /app/prod/ dot-env > .env
//	envfmt /app/prod/ php-fpm --region us-west-1 > env.conf
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/akupila/envfmt/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.New().Execute(ctx, os.Args[1:])
}

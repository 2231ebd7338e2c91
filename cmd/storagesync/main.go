package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/storagesync/internal/client/app"
	"github.com/dmitrijs2005/storagesync/internal/client/config"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code.
func run() int {

	ctx := context.Background()
	cmd, operands, args := app.SplitCommand(os.Args[1:])

	cfg, err := config.Load(args)
	if err != nil {
		log.Printf("%v", err)
		return 2
	}

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	defer a.Close()

	if err := a.Execute(ctx, cmd, operands); err != nil {
		log.Printf("%v", err)
		return 1
	}
	return 0
}

package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

const usage = `usage: storagesync [command] [flags]

commands:
  run                       sync once, or on -schedule (default)
  reset                     forget the local sync state
  enqueue <kind> <local-id> mark a local record for upload on the next pass
`

// SplitCommand separates a leading command word and its operands from the
// flags that follow them.
func SplitCommand(args []string) (cmd string, operands, rest []string) {
	cmd = "run"
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return cmd, nil, args
	}
	cmd, args = args[0], args[1:]
	i := 0
	for i < len(args) && !strings.HasPrefix(args[i], "-") {
		i++
	}
	return cmd, args[:i], args[i:]
}

// Execute runs one command against the configured store.
func (app *App) Execute(ctx context.Context, cmd string, operands []string) error {
	switch cmd {
	case "run":
		return app.Run(ctx)

	case "reset":
		if err := app.sync.Reset(ctx); err != nil {
			return err
		}
		app.logger.Info(ctx, "sync state cleared")
		return nil

	case "enqueue":
		if len(operands) != 2 {
			return fmt.Errorf("enqueue needs <kind> <local-id>\n%s", usage)
		}
		kind, ok := records.ParseKind(operands[0])
		if !ok {
			return fmt.Errorf("unknown record kind %q", operands[0])
		}
		if err := app.sync.EnqueueUpdate(ctx, kind, operands[1]); err != nil {
			return err
		}
		app.logger.Info(ctx, "record queued for upload", "kind", kind.String(), "local_id", operands[1])
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

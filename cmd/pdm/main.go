package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/interfaces/cli/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps rejected operations to 2 so scripts can tell them from failures
func exitCode(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeValidation, apperrors.CodeNotFound, apperrors.CodeConflict, apperrors.CodeInsufficientStock:
		return 2
	}
	return 1
}

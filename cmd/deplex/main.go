// Package main is the command-line entry point for running the plane
// extraction engine over a single frame file, or printing its default
// configuration.
package main

import (
	"context"

	"go.viam.com/utils"

	"github.com/denisovGIT/deplex/logging"
)

var logger = logging.NewDebugLogger("deplex")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	root := newRootCmd(logger)
	root.SetArgs(args[1:])
	return root.ExecuteContext(ctx)
}

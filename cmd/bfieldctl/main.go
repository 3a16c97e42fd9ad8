// Command bfieldctl creates, inspects, and queries b-field cascades from the
// shell. Grounded on the teacher's main.go command-registration style
// (urfave/cli.App with one Commands slot per subcommand file).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

var gitCommitSHA = ""

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-interrupt:
			fmt.Println()
			klog.Info("received interrupt signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(interrupt)
	}()

	app := &cli.App{
		Name:        "bfieldctl",
		Version:     gitCommitSHA,
		Description: "CLI to create, build, and query approximate b-field lookup tables.",
		Commands: []*cli.Command{
			newCmdCreate(),
			newCmdInsert(),
			newCmdLookup(),
			newCmdInfo(),
			newCmdBuild(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		klog.Exit(err)
	}
}

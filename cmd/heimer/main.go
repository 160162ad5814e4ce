package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/heimer/internal/cli"
	"github.com/aretw0/heimer/pkg/domain"
)

func main() {
	opts, err := cli.ParseArgs(os.Args[1:], os.Stdout)
	if errors.Is(err, domain.ErrExitRequested) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'heimer --help' for usage.")
		os.Exit(2)
	}

	if err := cli.Run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

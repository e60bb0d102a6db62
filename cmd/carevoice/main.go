package main

import (
	"context"
	"fmt"
	"os"

	"carevoice/internal/bootstrap"
)

func main() {
	if err := bootstrap.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "carevoice failed: %v\n", err)
		os.Exit(1)
	}
}

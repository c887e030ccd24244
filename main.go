package main

import (
	"context"
	"fmt"
	"os"

	"cognify/bootstrap"
)

func main() {
	if err := bootstrap.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "cognify: %v\n", err)
		os.Exit(1)
	}
}

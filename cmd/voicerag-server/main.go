package main

import (
	"context"
	"fmt"
	"os"

	"voicerag-server-go/internal/bootstrap"
)

func main() {
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "voicerag-server failed: %v\n", err)
		os.Exit(1)
	}
}

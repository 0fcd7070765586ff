// cmd/form-service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"form-submissions/internal/cli"
	apperrors "form-submissions/internal/common/errors"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) && stdErr.Details != "" {
			fmt.Fprintf(os.Stderr, "Error: %s [%s]: %s\n", stdErr.Message, stdErr.Code, stdErr.Details)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

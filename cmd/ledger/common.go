package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"finledger/internal/core"
)

// fail prints err and maps validation problems to a usage error.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	if errors.Is(err, core.ErrValidation) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

func parseID(flagName, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, fmt.Errorf("%w: -%s is required", core.ErrValidation, flagName)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: -%s: %v", core.ErrValidation, flagName, err)
	}
	return id, nil
}

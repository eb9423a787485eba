// Package proxy puts a write-through identity map in front of each
// repository. A proxy satisfies the same contract as the repository it
// wraps and, after construction, answers reads from memory.
//
// Proxies are not safe for concurrent use.
package proxy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/repository"
)

var (
	_ repository.AccountRepository   = (*AccountProxy)(nil)
	_ repository.CategoryRepository  = (*CategoryProxy)(nil)
	_ repository.OperationRepository = (*OperationProxy)(nil)
)

func debug(ctx context.Context, msg string, args ...any) {
	log.For(ctx, log.ComponentProxy).DebugContext(ctx, msg, args...)
}

func alreadyCached(kind string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", core.ErrAlreadyExists, kind, id)
}

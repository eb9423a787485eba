package memory

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"finledger/internal/cache"
	"finledger/internal/core"
	"finledger/internal/repository"
)

var (
	_ repository.AccountRepository   = (*AccountStore)(nil)
	_ repository.CategoryRepository  = (*CategoryStore)(nil)
	_ repository.OperationRepository = (*OperationStore)(nil)
)

// Store keeps the whole ledger in process memory. One mutex serializes
// every read and write, so a multi-entity write is observed either
// completely or not at all.
type Store struct {
	mu         sync.Mutex
	accounts   *cache.IdentityMap[uuid.UUID, core.BankAccount]
	categories *cache.IdentityMap[uuid.UUID, core.Category]
	operations *cache.IdentityMap[uuid.UUID, core.Operation]
	failNext   error
}

func New() *Store {
	return &Store{
		accounts:   cache.NewIdentityMap[uuid.UUID, core.BankAccount](),
		categories: cache.NewIdentityMap[uuid.UUID, core.Category](),
		operations: cache.NewIdentityMap[uuid.UUID, core.Operation](),
	}
}

var defaultCategories = []string{
	"income:Salary",
	"expense:Groceries",
	"expense:Rent",
	"expense:Transport",
}

// NewFromFiles builds a store whose categories come from
// base/seed_categories.txt, one "type:name" per line. Blank lines and
// lines starting with # are skipped. A missing file seeds defaults.
func NewFromFiles(base string) *Store {
	lines := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(lines) == 0 {
		lines = defaultCategories
	}

	s := New()
	for _, line := range lines {
		c, err := parseCategoryLine(line)
		if err != nil {
			slog.Warn("Skipping seed category", "component", "storage", "line", line, "error", err)
			continue
		}
		s.categories.Set(c.ID, c)
	}
	return s
}

// FailNextWrite makes the next multi-step write fail at its commit point
// with err, after every check has passed and before anything is applied.
func (s *Store) FailNextWrite(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// commit must be called with mu held, after staging and before applying.
func (s *Store) commit(step string) error {
	if s.failNext == nil {
		return nil
	}
	err := s.failNext
	s.failNext = nil
	return fmt.Errorf("%w: %s: %w", core.ErrTransaction, step, err)
}

func parseCategoryLine(line string) (core.Category, error) {
	typ, name, ok := strings.Cut(line, ":")
	if !ok {
		return core.Category{}, fmt.Errorf("%w: missing type prefix", core.ErrValidation)
	}
	t, err := core.ParseItemType(typ)
	if err != nil {
		return core.Category{}, err
	}
	return core.NewCategory(t, name)
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func notFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", core.ErrNotFound, kind, id)
}

func alreadyExists(kind string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", core.ErrAlreadyExists, kind, id)
}

// apps/go-server/internal/words/words.go
//
// Provides word list management for the game engine.
//
// Responsibilities:
//   - Load themed word lists from an environment-provided file or fall back
//     to the embedded defaults in assets/wordlists.txt.
//   - Group words by difficulty tier and category.
//   - Pick a round's word set from one category, or from every category of
//     the tier when the category is "random".
//
// File format (one category per line):
//   <difficulty> <category> WORD WORD WORD ...
//
// Environment variables:
//   WORDS_FILE=/path/to/wordlists.txt
//
// Constraints:
//   • Words are upper-cased, at least 2 letters, A–Z only.
//   • Duplicates inside a category are dropped.
//   • Initialization is run once (sync.Once).

package words

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/robalobadob/wordsearch/apps/go-server/assets"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/grid"
)

// Random is the pseudo-category that pools every category of a tier.
const Random = "random"

// MinLen is the shortest playable word.
const MinLen = 2

var (
	ErrUnknownDifficulty = errors.New("words: unknown difficulty")
	ErrUnknownCategory   = errors.New("words: unknown category")
	ErrNotEnoughWords    = errors.New("words: no playable words")
)

// Catalog holds word lists keyed by difficulty, then category.
type Catalog struct {
	lists map[string]map[string][]string
}

var (
	initOnce   sync.Once
	catalog    *Catalog
	initialErr error
)

// Init loads the default catalog exactly once.
func Init() error {
	initOnce.Do(func() {
		var lines []string
		if path := os.Getenv("WORDS_FILE"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				initialErr = err
				return
			}
			defer f.Close()
			lines, err = assets.ReadLines(f)
			if err != nil {
				initialErr = err
				return
			}
		} else {
			var err error
			lines, err = assets.WordLists()
			if err != nil {
				initialErr = err
				return
			}
		}
		catalog, initialErr = Parse(lines)
	})
	return initialErr
}

// Default returns the catalog loaded by Init, loading it if needed. It
// panics if the word lists cannot be loaded; call Init first to handle
// that error.
func Default() *Catalog {
	if err := Init(); err != nil {
		panic(fmt.Sprintf("words: default catalog unavailable: %v", err))
	}
	return catalog
}

// Parse builds a catalog from "<difficulty> <category> WORD..." lines.
func Parse(lines []string) (*Catalog, error) {
	c := &Catalog{lists: make(map[string]map[string][]string)}
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("words: line %d: want difficulty, category and words", i+1)
		}
		tier, cat := strings.ToLower(fields[0]), strings.ToLower(fields[1])
		if cat == Random {
			return nil, fmt.Errorf("words: line %d: %q is reserved", i+1, Random)
		}
		list := lo.Uniq(lo.FilterMap(fields[2:], func(w string, _ int) (string, bool) {
			return Normalize(w)
		}))
		if len(list) == 0 {
			continue
		}
		if c.lists[tier] == nil {
			c.lists[tier] = make(map[string][]string)
		}
		c.lists[tier][cat] = lo.Uniq(append(c.lists[tier][cat], list...))
	}
	if len(c.lists) == 0 {
		return nil, errors.New("words: catalog is empty")
	}
	return c, nil
}

// Normalize upper-cases w and reports whether it is a playable word.
func Normalize(w string) (string, bool) {
	w = strings.ToUpper(strings.TrimSpace(w))
	if len(w) < MinLen {
		return "", false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'A' || w[i] > 'Z' {
			return "", false
		}
	}
	return w, true
}

// Difficulties returns the tiers present in the catalog, sorted.
func (c *Catalog) Difficulties() []string {
	out := lo.Keys(c.lists)
	sort.Strings(out)
	return out
}

// Categories returns the categories of a tier, sorted, plus Random.
func (c *Catalog) Categories(difficulty string) []string {
	cats, ok := c.lists[strings.ToLower(difficulty)]
	if !ok {
		return nil
	}
	out := lo.Keys(cats)
	sort.Strings(out)
	return append(out, Random)
}

// Pool returns every word a round of this tier and category may draw from.
func (c *Catalog) Pool(difficulty, category string) ([]string, error) {
	cats, ok := c.lists[strings.ToLower(difficulty)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}
	category = strings.ToLower(category)
	if category == "" || category == Random {
		names := lo.Keys(cats)
		sort.Strings(names)
		return lo.Uniq(lo.Flatten(lo.Map(names, func(n string, _ int) []string {
			return cats[n]
		}))), nil
	}
	list, ok := cats[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return append([]string(nil), list...), nil
}

// Pick draws up to count distinct words no longer than maxLen from the pool.
// The result order is the draw order.
func (c *Catalog) Pick(difficulty, category string, count, maxLen int, rng grid.Rand) ([]string, error) {
	pool, err := c.Pool(difficulty, category)
	if err != nil {
		return nil, err
	}
	pool = lo.Filter(pool, func(w string, _ int) bool { return len(w) <= maxLen })
	if len(pool) == 0 {
		return nil, ErrNotEnoughWords
	}
	if count <= 0 || count > len(pool) {
		count = len(pool)
	}
	// Partial Fisher–Yates: the first count entries become the draw.
	for i := 0; i < count; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count], nil
}

package doublehash

import (
	"errors"
	"fmt"
	"math"

	"github.com/bdragon300/doublehash/primes"
	"go.uber.org/zap"
)

const (
	DefaultBaseCapacity = 5
	MinBaseCapacity     = 5 // Resizes below this base are ignored
	// MaxBaseCapacity keeps probe arithmetic (attempt * step, both below capacity) within uint64.
	MaxBaseCapacity = math.MaxInt32

	// PrimeA and PrimeB are the polynomial bases of two hash components. Both are primes larger than
	// the ASCII alphabet size (128).
	PrimeA = 227
	PrimeB = 773

	GrowLoad   = 75 // Percent of occupied slots above which the table grows before insertion
	ShrinkLoad = 10 // Percent of occupied slots below which the table shrinks before deletion
)

var (
	// ErrInvalidSize is returned when a base capacity is below 2 or above MaxBaseCapacity.
	ErrInvalidSize = primes.ErrInvalidSize
	// ErrDestroyed is a panic value for inserts into a destroyed table.
	ErrDestroyed = errors.New("hash table is destroyed")
)

// NewHashTableDefault creates a new hash table with default base capacity.
func NewHashTableDefault() *HashTable {
	t, err := NewHashTable(DefaultBaseCapacity)
	if err != nil {
		panic(err)
	}
	return t
}

// NewHashTable creates a new empty hash table. The actual capacity is the smallest prime greater or equal
// to baseCapacity. Base capacity below MinBaseCapacity is raised to MinBaseCapacity, but values below 2 or above
// MaxBaseCapacity are rejected with ErrInvalidSize.
func NewHashTable(baseCapacity int) (*HashTable, error) {
	if err := checkBaseCapacity(baseCapacity); err != nil {
		return nil, fmt.Errorf("create hash table: %w", err)
	}
	baseCapacity = max(baseCapacity, MinBaseCapacity)
	capacity, _ := primes.NextPrime(baseCapacity) // Fails only below 2

	return &HashTable{
		Logger:       zap.NewNop(),
		baseCapacity: baseCapacity,
		slots:        make([]bslot, capacity),
	}, nil
}

// HashTable is a string to string map with open addressing and double hashing. Table capacity is always
// a prime number, so every probe sequence visits all slots.
//
// Deleted entries leave tombstones behind them, so probe sequences that pass through them are not cut short.
// Tombstones are dropped when the table is rebuilt.
//
// The table grows twice before insertion when its load exceeds GrowLoad percent and shrinks twice before deletion
// when its load is below ShrinkLoad percent. Every resize rehashes all live entries into a new slots array.
//
// HashTable is not safe for concurrent use.
type HashTable struct {
	// Logger receives resize events. Must not be nil.
	Logger *zap.Logger

	baseCapacity int // Size requested on the last resize, capacity is derived from it
	count        int // Occupied slots, tombstones excluded
	slots        []bslot
	destroyed    bool
}

// Insert sets a value for a key. If the key already exists, its value is replaced.
//
// Panics with ErrDestroyed if the table has been destroyed.
func (t *HashTable) Insert(key, value string) {
	if t.destroyed {
		panic(ErrDestroyed)
	}
	if t.Load() > GrowLoad {
		t.autoResize(t.baseCapacity*2, "grow")
	}
	insert(t, key, value)
}

// Search returns a value for a key. If the key does not exist, it returns an empty string and false.
func (t *HashTable) Search(key string) (string, bool) {
	if len(t.slots) == 0 {
		return "", false
	}
	idx, ok := lookup(t, key)
	if !ok {
		return "", false
	}
	return t.slots[idx].value, true
}

// Delete removes a key from the table. Returns false if the key was not present.
func (t *HashTable) Delete(key string) bool {
	if len(t.slots) == 0 {
		return false
	}
	if t.Load() < ShrinkLoad {
		t.autoResize(t.baseCapacity/2, "shrink")
	}
	return remove(t, key)
}

// Resize rebuilds the table with a new base capacity. All tombstones are dropped.
// Base capacity below MinBaseCapacity is ignored, above MaxBaseCapacity is rejected with ErrInvalidSize.
func (t *HashTable) Resize(baseCapacity int) error {
	if t.destroyed {
		return ErrDestroyed
	}
	_, err := resize(t, baseCapacity)
	return err
}

// Destroy releases all entries and the slots array. Searches and deletions on a destroyed table find nothing.
func (t *HashTable) Destroy() {
	clear(t.slots)
	t.slots = nil
	t.count = 0
	t.destroyed = true
}

// Len returns the number of elements in the hash table.
func (t *HashTable) Len() int {
	return t.count
}

// Cap returns the number of slots in the hash table.
func (t *HashTable) Cap() int {
	return len(t.slots)
}

// BaseCap returns the base capacity the current capacity was derived from.
func (t *HashTable) BaseCap() int {
	return t.baseCapacity
}

// Load returns the percent of occupied slots, rounded down.
func (t *HashTable) Load() int {
	if len(t.slots) == 0 {
		return 0
	}
	return t.count * 100 / len(t.slots)
}

func (t *HashTable) autoResize(baseCapacity int, reason string) {
	prevCap := len(t.slots)
	resized, err := resize(t, baseCapacity)
	if err != nil {
		// Table is left untouched
		t.Logger.Warn("resize abandoned", zap.String("reason", reason), zap.Int("base", baseCapacity), zap.Error(err))
		return
	}
	if !resized {
		return
	}
	t.Logger.Debug(
		"resized",
		zap.String("reason", reason),
		zap.Int("from", prevCap),
		zap.Int("to", len(t.slots)),
		zap.Int("count", t.count),
	)
}

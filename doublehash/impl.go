package doublehash

import (
	"fmt"

	"github.com/bdragon300/doublehash/primes"
)

type slotState uint8

const (
	slotEmpty slotState = iota // Never used since the slots array was allocated
	slotOccupied
	slotTombstone // Was occupied, probing must go on past it
)

type bslot struct {
	state slotState
	key   string
	value string
}

func insert(table *HashTable, key, value string) {
	size := uint64(len(table.slots))
	start, step := probeParams(key, size)

	// The first free slot is a target unless the key is found further along the sequence
	target := -1
probing:
	for attempt := uint64(0); attempt < size; attempt++ {
		idx := int((start + attempt*step) % size)
		slot := &table.slots[idx]
		switch slot.state {
		case slotEmpty:
			if target < 0 {
				target = idx
			}
			break probing
		case slotTombstone:
			if target < 0 {
				target = idx
			}
		case slotOccupied:
			if slot.key == key {
				slot.value = value
				return
			}
		}
	}
	if target < 0 {
		panic("table is full")
	}

	table.slots[target] = bslot{state: slotOccupied, key: key, value: value}
	table.count++
}

// lookup returns an index of a slot occupied by key.
func lookup(table *HashTable, key string) (int, bool) {
	size := uint64(len(table.slots))
	start, step := probeParams(key, size)

	for attempt := uint64(0); attempt < size; attempt++ {
		idx := int((start + attempt*step) % size)
		switch slot := &table.slots[idx]; slot.state {
		case slotEmpty:
			return -1, false
		case slotOccupied:
			if slot.key == key {
				return idx, true
			}
		}
	}
	return -1, false
}

func remove(table *HashTable, key string) bool {
	idx, ok := lookup(table, key)
	if !ok {
		return false
	}
	table.slots[idx] = bslot{state: slotTombstone}
	table.count--
	return true
}

// resize rehashes live entries into a new slots array. Returns false if baseCapacity is below MinBaseCapacity
// and nothing was done.
func resize(table *HashTable, baseCapacity int) (bool, error) {
	if baseCapacity < MinBaseCapacity {
		return false, nil
	}
	if err := checkBaseCapacity(baseCapacity); err != nil {
		return false, fmt.Errorf("resize: %w", err)
	}
	capacity, _ := primes.NextPrime(baseCapacity) // Fails only below 2

	fresh := HashTable{baseCapacity: baseCapacity, slots: make([]bslot, capacity)}
	for i := range table.slots {
		if table.slots[i].state == slotOccupied {
			insert(&fresh, table.slots[i].key, table.slots[i].value)
		}
	}

	table.baseCapacity = fresh.baseCapacity
	table.count = fresh.count
	table.slots = fresh.slots
	return true, nil
}

func checkBaseCapacity(baseCapacity int) error {
	if baseCapacity < 2 || baseCapacity > MaxBaseCapacity {
		return fmt.Errorf("base capacity %d: %w", baseCapacity, ErrInvalidSize)
	}
	return nil
}

// probe returns a slot index for the given attempt of probing the key in a table of given size.
func probe(key string, size, attempt uint64) uint64 {
	start, step := probeParams(key, size)
	return (start + attempt*step) % size
}

// probeParams returns the first slot index and the probing step for a key. Step is never zero modulo size,
// so on a prime size the sequence start+i*step visits every slot exactly once for i in 0..size-1.
func probeParams(key string, size uint64) (start, step uint64) {
	start = hashComponent(key, PrimeA, size)
	step = (hashComponent(key, PrimeB, size) + 1) % size
	if step == 0 {
		step = 1
	}
	return
}

// hashComponent computes Σ a^(len-1-i) * key[i] mod size, reducing after every step.
func hashComponent(key string, a, size uint64) uint64 {
	var hsh uint64
	for i := 0; i < len(key); i++ {
		hsh = (hsh*a + uint64(key[i])) % size
	}
	return hsh
}

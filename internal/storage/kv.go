package storage

import (
	"context"
	"fmt"
	"strconv"
)

// KV is the key-value surface the stores are written against. Every single
// call is atomic; sequences of calls are not.
type KV interface {
	HGet(ctx context.Context, key, field string) ([]byte, error)
	HSet(ctx context.Context, key, field string, value []byte) error
	HSetNX(ctx context.Context, key, field string, value []byte) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)
	HKeys(ctx context.Context, key string) ([]string, error)
	HDel(ctx context.Context, key string, fields ...string) (int, error)

	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	RPush(ctx context.Context, key string, values ...string) (int, error)
	LRange(ctx context.Context, key string, start, stop int) ([]string, error)

	// Lock enters a single-writer section for key and returns its release
	// function. Sections for the same key never overlap within a process.
	Lock(key string) func()
}

var _ KV = (*PebbleDB)(nil)

func hashPrefix(key string) []byte {
	b := make([]byte, 0, len(PrefixHash)+len(key)+1)
	b = append(b, PrefixHash...)
	b = append(b, key...)
	return append(b, keySep)
}

func hashFieldKey(key, field string) []byte {
	return append(hashPrefix(key), field...)
}

func stringKey(key string) []byte {
	return []byte(PrefixString + key)
}

func listLengthKey(key string) []byte {
	return []byte(PrefixListLength + key)
}

func listItemPrefix(key string) []byte {
	b := make([]byte, 0, len(PrefixListItem)+len(key)+1)
	b = append(b, PrefixListItem...)
	b = append(b, key...)
	return append(b, keySep)
}

// listItemKey zero-pads the position so items sort in insertion order
func listItemKey(key string, pos int) []byte {
	return fmt.Appendf(listItemPrefix(key), "%020d", pos)
}

// HGet returns the value of a hash field, or nil if it is not set
func (p *PebbleDB) HGet(ctx context.Context, key, field string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.get(hashFieldKey(key, field))
}

// HSet sets a hash field, overwriting any existing value
func (p *PebbleDB) HSet(ctx context.Context, key, field string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.set(hashFieldKey(key, field), value)
}

// HSetNX sets a hash field only if it does not exist yet and reports whether
// the write happened
func (p *PebbleDB) HSetNX(ctx context.Context, key, field string, value []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	k := hashFieldKey(key, field)
	unlock := p.prim.lock(k)
	defer unlock()

	existing, err := p.get(k)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if err := p.set(k, value); err != nil {
		return false, err
	}
	return true, nil
}

// HGetAll returns every field of a hash
func (p *PebbleDB) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := hashPrefix(key)
	fields := make(map[string][]byte)
	err := p.scanPrefix(prefix, func(k, v []byte) error {
		value := make([]byte, len(v))
		copy(value, v)
		fields[string(k[len(prefix):])] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// HKeys returns the field names of a hash
func (p *PebbleDB) HKeys(ctx context.Context, key string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := hashPrefix(key)
	var names []string
	err := p.scanPrefix(prefix, func(k, _ []byte) error {
		names = append(names, string(k[len(prefix):]))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// HDel removes the given fields from a hash and returns how many existed
func (p *PebbleDB) HDel(ctx context.Context, key string, fields ...string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, nil
	}

	unlock := p.prim.lock(hashPrefix(key))
	defer unlock()

	batch := p.db.NewBatch()
	defer batch.Close()

	removed := 0
	for _, field := range fields {
		k := hashFieldKey(key, field)
		existing, err := p.get(k)
		if err != nil {
			return 0, err
		}
		if existing == nil {
			continue
		}
		if err := batch.Delete(k, nil); err != nil {
			return 0, err
		}
		removed++
	}

	if removed == 0 {
		return 0, nil
	}
	if err := batch.Commit(p.writeOptions()); err != nil {
		return 0, err
	}
	return removed, nil
}

// Get returns a string value, or nil if the key does not exist
func (p *PebbleDB) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.get(stringKey(key))
}

// Set stores a string value
func (p *PebbleDB) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.set(stringKey(key), value)
}

func (p *PebbleDB) listLength(key string) (int, error) {
	data, err := p.get(listLengthKey(key))
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("failed to parse list length: %w", err)
	}
	return n, nil
}

// RPush appends values to a list and returns its new length
func (p *PebbleDB) RPush(ctx context.Context, key string, values ...string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	unlock := p.prim.lock(listLengthKey(key))
	defer unlock()

	length, err := p.listLength(key)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return length, nil
	}

	batch := p.db.NewBatch()
	defer batch.Close()

	for i, v := range values {
		if err := batch.Set(listItemKey(key, length+i), []byte(v), nil); err != nil {
			return 0, err
		}
	}
	length += len(values)
	if err := batch.Set(listLengthKey(key), []byte(strconv.Itoa(length)), nil); err != nil {
		return 0, err
	}

	if err := batch.Commit(p.writeOptions()); err != nil {
		return 0, err
	}
	return length, nil
}

// LRange returns list items between start and stop inclusive. Negative
// positions count from the end of the list, -1 being the last item.
func (p *PebbleDB) LRange(ctx context.Context, key string, start, stop int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	length, err := p.listLength(key)
	if err != nil {
		return nil, err
	}
	start, stop, ok := normalizeRange(start, stop, length)
	if !ok {
		return []string{}, nil
	}

	items := make([]string, 0, stop-start+1)
	err = p.scan(listItemKey(key, start), listItemKey(key, stop+1), func(_, v []byte) error {
		items = append(items, string(v))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Lock enters the single-writer section for key
func (p *PebbleDB) Lock(key string) func() {
	return p.keys.lock([]byte(key))
}

func normalizeRange(start, stop, length int) (int, int, bool) {
	if start < 0 {
		start += length
	}
	if stop < 0 {
		stop += length
	}
	if start < 0 {
		start = 0
	}
	if stop >= length {
		stop = length - 1
	}
	if length == 0 || start > stop {
		return 0, 0, false
	}
	return start, stop, true
}

// Copyright (c) 2025 fpxbs7777

package datastore

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/bvkgo/kv"
)

func get[T any](ctx context.Context, g kv.Getter, key string) (*T, error) {
	value, err := g.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not Get from %q: %w", key, err)
	}
	gv := new(T)
	if err := gob.NewDecoder(value).Decode(gv); err != nil {
		return nil, fmt.Errorf("could not gob-decode value at key %q: %w", key, err)
	}
	return gv, nil
}

func set[T any](ctx context.Context, s kv.Setter, key string, value *T) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return fmt.Errorf("could not gob-encode value for key %q: %w", key, err)
	}
	return s.Set(ctx, key, &buf)
}

type iterFunc[T any] func(ctx context.Context, key string, value *T) error

// ascend calls fn for every key in [begin, end) in ascending order.
func ascend[T any](ctx context.Context, r kv.Reader, begin, end string, fn iterFunc[T]) error {
	it, err := r.Ascend(ctx, begin, end)
	if err != nil {
		return fmt.Errorf("could not create ascending iterator: %w", err)
	}
	defer kv.Close(it)

	for k, v, err := it.Fetch(ctx, false); err == nil; k, v, err = it.Fetch(ctx, true) {
		gv := new(T)
		if err := gob.NewDecoder(v).Decode(gv); err != nil {
			return fmt.Errorf("could not gob-decode value at key %q: %w", k, err)
		}
		if err := fn(ctx, k, gv); err != nil {
			return err
		}
	}
	if _, _, err := it.Fetch(ctx, false); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not complete ascend: %w", err)
	}
	return nil
}

// last returns the largest key in [begin, end) and its value. Returns
// os.ErrNotExist when the range is empty.
func last[T any](ctx context.Context, r kv.Reader, begin, end string) (string, *T, error) {
	it, err := r.Descend(ctx, begin, end)
	if err != nil {
		return "", nil, fmt.Errorf("could not create descending iterator: %w", err)
	}
	defer kv.Close(it)

	k, v, err := it.Fetch(ctx, false)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil, fmt.Errorf("no keys in range [%q, %q): %w", begin, end, os.ErrNotExist)
		}
		return "", nil, fmt.Errorf("could not fetch from descending iterator: %w", err)
	}
	gv := new(T)
	if err := gob.NewDecoder(v).Decode(gv); err != nil {
		return k, nil, fmt.Errorf("could not gob-decode value at key %q: %w", k, err)
	}
	return k, gv, nil
}

// pathRange returns the key range holding all keys under the directory.
func pathRange(dir string) (begin string, end string) {
	dir = path.Clean(dir)
	if dir == "/" {
		return "", ""
	}
	return dir + "/", dir + string('/'+1)
}

// IsGoodKey reports whether the key is an absolute and clean path. Badger
// backed databases are opened with this key checker.
func IsGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}

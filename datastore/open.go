// Copyright (c) 2025 fpxbs7777

package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
	"github.com/nightlyone/lockfile"
)

// Open opens a badger backed datastore in the data directory. The directory
// is locked for exclusive use until the returned closer is called.
func Open(dataDir string) (_ *Datastore, closer func(), status error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("could not create data directory %q: %w", dataDir, err)
	}
	dir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("could not determine data-dir %q absolute path: %w", dataDir, err)
	}

	lockPath := filepath.Join(dir, "hmbroker.lock")
	flock, err := lockfile.New(lockPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create lock file %q: %w", lockPath, err)
	}
	if err := flock.TryLock(); err != nil {
		return nil, nil, fmt.Errorf("could not get lock on file %q: %w", lockPath, err)
	}
	defer func() {
		if status != nil {
			flock.Unlock()
		}
	}()

	bopts := badger.DefaultOptions(filepath.Join(dir, "db"))
	bopts.Logger = nil
	bdb, err := badger.Open(bopts)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open the database: %w", err)
	}
	closer = func() {
		bdb.Close()
		flock.Unlock()
	}
	return New(kvbadger.New(bdb, IsGoodKey)), closer, nil
}

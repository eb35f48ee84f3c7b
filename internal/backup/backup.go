// Package backup keeps timestamped snapshots of a store file in a bbolt
// archive next to it. The archive holds the raw file bytes: encrypted
// values stay encrypted, and restoring a snapshot is a plain byte-for-byte
// rewrite of the store file.
package backup

import (
	"fmt"
	"os"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ArchiveSuffix is appended to the store path to name the archive file.
const ArchiveSuffix = ".backups"

var snapshotsBucket = []byte("snapshots")

// Info describes one stored snapshot.
type Info struct {
	ID   string // RFC3339 timestamp, sortable
	Size int64
}

// Archive is a bbolt-backed snapshot store for one store file.
type Archive struct {
	db        *bolt.DB
	storePath string
}

// Open opens or creates the archive for the given store file.
func Open(storePath string) (*Archive, error) {
	db, err := bolt.Open(storePath+ArchiveSuffix, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup archive: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize backup archive: %w", err)
	}

	return &Archive{db: db, storePath: storePath}, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Snapshot stores the current store file content under a fresh
// timestamp ID and returns the ID.
func (a *Archive) Snapshot() (string, error) {
	data, err := os.ReadFile(a.storePath)
	if err != nil {
		return "", fmt.Errorf("failed to read store file: %w", err)
	}

	id := time.Now().UTC().Format(time.RFC3339Nano)
	err = a.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotsBucket).Put([]byte(id), data)
	})
	if err != nil {
		return "", fmt.Errorf("failed to store snapshot: %w", err)
	}
	return id, nil
}

// List returns all snapshots, oldest first.
func (a *Archive) List() ([]Info, error) {
	var infos []Info
	err := a.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotsBucket).ForEach(func(k, v []byte) error {
			infos = append(infos, Info{ID: string(k), Size: int64(len(v))})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Get returns the raw content of a snapshot.
func (a *Archive) Get(id string) ([]byte, error) {
	var data []byte
	err := a.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(snapshotsBucket).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("snapshot %s not found", id)
		}
		// Copy out: the slice is only valid during the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

// Latest returns the ID of the most recent snapshot, or "" when empty.
func (a *Archive) Latest() (string, error) {
	infos, err := a.List()
	if err != nil {
		return "", err
	}
	if len(infos) == 0 {
		return "", nil
	}
	return infos[len(infos)-1].ID, nil
}

// Restore rewrites the store file from a snapshot.
func (a *Archive) Restore(id string) error {
	data, err := a.Get(id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.storePath, data, 0600); err != nil {
		return fmt.Errorf("failed to restore store file: %w", err)
	}
	return nil
}

// Prune drops all but the newest keep snapshots and reports how many
// were removed.
func (a *Archive) Prune(keep int) (int, error) {
	infos, err := a.List()
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(infos) <= keep {
		return 0, nil
	}

	drop := infos[:len(infos)-keep]
	err = a.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(snapshotsBucket)
		for _, info := range drop {
			if err := b.Delete([]byte(info.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return len(drop), nil
}

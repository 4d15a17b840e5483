// Package store abstracts the database for recorded template
// configurations.
//
// Every configuration a template pushes to the host may also be recorded
// here, giving the daemon a replayable history per owner and a fast "latest
// snapshot" lookup for diagnostics.
package store

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
	"src.tmb.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[store] ")

// ErrNoSnapshot is returned when an owner has no recorded configuration.
var ErrNoSnapshot = errors.New("no snapshot for owner")

// Store is an interface satisfied by the storage service.
type Store interface {
	// Add records cfgJSON as the next entry of owner's history and as
	// owner's latest snapshot, returning the entry's sequence number.
	Add(owner string, cfgJSON []byte) (int, error)
	// Snapshot returns the latest recorded configuration of owner.
	Snapshot(owner string) ([]byte, error)
	// NextSeq returns the sequence number the next Add for owner will get.
	NextSeq(owner string) (int, error)
	// IterateHistory calls f for each history entry of owner with sequence
	// number in [from, upto), in order.
	IterateHistory(owner string, from, upto int, f func(Record)) error
	// Owners lists every owner with at least one recorded configuration.
	Owners() ([]string, error)
}

// DBStore is Store plus methods of the concrete database-backed
// implementation.
type DBStore interface {
	Store
	Close() error
}

// Record is one entry in an owner's configuration history.
type Record struct {
	Seq     int
	CfgJSON []byte
}

const (
	bucketSnapshot = "snapshot"
	bucketHistory  = "history"
)

var initDB = []func(*bolt.Tx) error{
	func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSnapshot))
		return err
	},
	func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketHistory))
		return err
	},
}

type dbStore struct {
	db *bolt.DB
}

// NewStore creates a new Store from the given file.
func NewStore(dbname string) (DBStore, error) {
	db, err := bolt.Open(dbname, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbname, err)
	}
	logger.Println("opened database", dbname)
	st := &dbStore{db}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, fn := range initDB {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database %s: %w", dbname, err)
	}
	return st, nil
}

func (s *dbStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

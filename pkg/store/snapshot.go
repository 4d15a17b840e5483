package store

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"
)

// History entries live in a sub-bucket per owner, keyed by big-endian
// sequence numbers so that cursor order is sequence order.

func (s *dbStore) Add(owner string, cfgJSON []byte) (int, error) {
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		h, err := tx.Bucket([]byte(bucketHistory)).
			CreateBucketIfNotExists([]byte(owner))
		if err != nil {
			return err
		}
		seq, err = h.NextSequence()
		if err != nil {
			return err
		}
		if err := h.Put(marshalSeq(seq), cfgJSON); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketSnapshot)).Put([]byte(owner), cfgJSON)
	})
	return int(seq), err
}

func (s *dbStore) Snapshot(owner string) ([]byte, error) {
	var cfgJSON []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketSnapshot)).Get([]byte(owner))
		if v == nil {
			return ErrNoSnapshot
		}
		cfgJSON = append([]byte(nil), v...)
		return nil
	})
	return cfgJSON, err
}

func (s *dbStore) NextSeq(owner string) (int, error) {
	var seq uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		h := tx.Bucket([]byte(bucketHistory)).Bucket([]byte(owner))
		if h != nil {
			seq = h.Sequence()
		}
		return nil
	})
	return int(seq + 1), err
}

func (s *dbStore) IterateHistory(owner string, from, upto int, f func(Record)) error {
	return s.db.View(func(tx *bolt.Tx) error {
		h := tx.Bucket([]byte(bucketHistory)).Bucket([]byte(owner))
		if h == nil {
			return nil
		}
		c := h.Cursor()
		for k, v := c.Seek(marshalSeq(uint64(from))); k != nil && unmarshalSeq(k) < uint64(upto); k, v = c.Next() {
			f(Record{Seq: int(unmarshalSeq(k)), CfgJSON: append([]byte(nil), v...)})
		}
		return nil
	})
}

func (s *dbStore) Owners() ([]string, error) {
	var owners []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSnapshot)).ForEach(func(k, _ []byte) error {
			owners = append(owners, string(k))
			return nil
		})
	})
	return owners, err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}

// Package trace persists per-instruction machine snapshots in a bbolt
// database, for inspecting a run after the fact.
package trace

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/jcorbin/cma"
)

var stepsBucket = []byte("steps")

// ErrNoStep is returned when looking up a step that was never recorded.
var ErrNoStep = errors.New("trace: no such step")

// Entry records one executed instruction and the state it left behind.
type Entry struct {
	Step   uint64          `cbor:"step"`
	Insn   cma.Instruction `cbor:"insn"`
	Digest cma.Digest      `cbor:"digest"`
	Snap   []byte          `cbor:"snap"` // cma.Snapshot.MarshalBinary
}

// Snapshot decodes the entry's machine state.
func (ent Entry) Snapshot() (cma.Snapshot, error) {
	var snap cma.Snapshot
	err := snap.UnmarshalBinary(ent.Snap)
	return snap, err
}

// Store is a cma.Tracer that writes every step it observes to disk.
type Store struct {
	db *bolt.DB
}

// Open creates or opens a trace database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stepsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: init %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Trace implements cma.Tracer.
func (s *Store) Trace(step uint64, insn cma.Instruction, snap cma.Snapshot) error {
	data, err := snap.MarshalBinary()
	if err != nil {
		return err
	}
	val, err := cbor.Marshal(Entry{
		Step:   step,
		Insn:   insn,
		Digest: snap.Digest(),
		Snap:   data,
	})
	if err != nil {
		return fmt.Errorf("trace: marshal step %v: %w", step, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stepsBucket).Put(stepKey(step), val)
	})
}

// Entry loads the record for a step.
func (s *Store) Entry(step uint64) (ent Entry, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(stepsBucket).Get(stepKey(step))
		if val == nil {
			return ErrNoStep
		}
		return cbor.Unmarshal(val, &ent)
	})
	return ent, err
}

// Snapshot loads the machine state recorded after a step.
func (s *Store) Snapshot(step uint64) (cma.Snapshot, error) {
	ent, err := s.Entry(step)
	if err != nil {
		return cma.Snapshot{}, err
	}
	return ent.Snapshot()
}

// Digests returns the recorded state digests in step order.
func (s *Store) Digests() (digests []cma.Digest, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(stepsBucket).ForEach(func(_, val []byte) error {
			var ent Entry
			if err := cbor.Unmarshal(val, &ent); err != nil {
				return err
			}
			digests = append(digests, ent.Digest)
			return nil
		})
	})
	return digests, err
}

// Len returns how many steps have been recorded.
func (s *Store) Len() (n int, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(stepsBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// stepKey sorts steps numerically under bbolt's byte ordering.
func stepKey(step uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], step)
	return key[:]
}

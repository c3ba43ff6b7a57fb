package cma

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/mr-tron/base58"
	"github.com/zeebo/blake3"
)

// Snapshot is a copy of the complete machine state: registers and memory.
type Snapshot struct {
	Regs Registers `cbor:"regs"`
	Mem  []int     `cbor:"mem"`
}

// Snapshot copies the current registers and memory.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Regs: m.reg,
		Mem:  append([]int(nil), m.mem...),
	}
}

// snapshotData sheds Snapshot's BinaryMarshaler methods, which cbor would
// otherwise call.
type snapshotData Snapshot

var snapEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cma: failed to create CBOR enc mode: %v", err))
	}
	snapEncMode = em
}

// MarshalBinary encodes the snapshot as zstd compressed canonical CBOR.
func (snap Snapshot) MarshalBinary() ([]byte, error) {
	data, err := snapEncMode.Marshal(snapshotData(snap))
	if err != nil {
		return nil, fmt.Errorf("cma: marshal snapshot: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (snap *Snapshot) UnmarshalBinary(data []byte) error {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("cma: decompress snapshot: %w", err)
	}
	var res snapshotData
	if err := cbor.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("cma: unmarshal snapshot: %w", err)
	}
	*snap = Snapshot(res)
	return nil
}

// Digest identifies a machine state; equal snapshots have equal digests.
type Digest [32]byte

func (d Digest) String() string { return base58.Encode(d[:]) }

// Digest hashes the canonical encoding of the snapshot with blake3.
func (snap Snapshot) Digest() Digest {
	data, err := snapEncMode.Marshal(snapshotData(snap))
	if err != nil {
		panic(fmt.Sprintf("cma: marshal snapshot: %v", err))
	}
	return blake3.Sum256(data)
}

package store

import (
	"encoding/binary"
	"fmt"

	"github.com/erigontech/revsynth/gate"
)

// Origin records how a template was produced (§3 Template Record).
type Origin uint8

const (
	OriginSAT    Origin = 1
	OriginUnroll Origin = 2
)

// TemplateRecord is the on-disk representation of one stored circuit.
// Byte layout (little-endian, fixed 91-byte header then gates_encoded),
// matching original_source/src/database/templates.py TemplateRecord:
//
//	template_id         u64
//	basis_id            u8
//	width               u8
//	gate_count          u16
//	canonical_hash      32B
//	family_hash         32B
//	origin              u8
//	origin_template_id  u64 (0 = none)
//	unroll_ops          u32
//	gates_len           u16
//	gates_encoded       gates_len bytes
type TemplateRecord struct {
	TemplateID        uint64
	BasisID           gate.BasisID
	Width             uint8
	GateCount         uint16
	CanonicalHash     [32]byte
	FamilyHash        [32]byte
	Origin            Origin
	OriginTemplateID  uint64 // 0 = none
	UnrollOps         uint32
	GatesEncoded      []byte
}

const templateHeaderSize = 8 + 1 + 1 + 2 + 32 + 32 + 1 + 8 + 4 + 2 // 91

// Encode serializes r to its on-disk byte form.
func (r TemplateRecord) Encode() []byte {
	out := make([]byte, templateHeaderSize+len(r.GatesEncoded))
	off := 0
	binary.LittleEndian.PutUint64(out[off:], r.TemplateID)
	off += 8
	out[off] = byte(r.BasisID)
	off++
	out[off] = r.Width
	off++
	binary.LittleEndian.PutUint16(out[off:], r.GateCount)
	off += 2
	copy(out[off:], r.CanonicalHash[:])
	off += 32
	copy(out[off:], r.FamilyHash[:])
	off += 32
	out[off] = byte(r.Origin)
	off++
	binary.LittleEndian.PutUint64(out[off:], r.OriginTemplateID)
	off += 8
	binary.LittleEndian.PutUint32(out[off:], r.UnrollOps)
	off += 4
	binary.LittleEndian.PutUint16(out[off:], uint16(len(r.GatesEncoded)))
	off += 2
	copy(out[off:], r.GatesEncoded)
	return out
}

// DecodeTemplateRecord parses the byte form produced by Encode, returning
// ErrCorruption (wrapped) on a malformed buffer.
func DecodeTemplateRecord(data []byte) (TemplateRecord, error) {
	if len(data) < templateHeaderSize {
		return TemplateRecord{}, fmt.Errorf("%w: template record too short (%d bytes)", ErrCorruption, len(data))
	}
	var r TemplateRecord
	off := 0
	r.TemplateID = binary.LittleEndian.Uint64(data[off:])
	off += 8
	r.BasisID = gate.BasisID(data[off])
	off++
	r.Width = data[off]
	off++
	r.GateCount = binary.LittleEndian.Uint16(data[off:])
	off += 2
	copy(r.CanonicalHash[:], data[off:off+32])
	off += 32
	copy(r.FamilyHash[:], data[off:off+32])
	off += 32
	r.Origin = Origin(data[off])
	off++
	r.OriginTemplateID = binary.LittleEndian.Uint64(data[off:])
	off += 8
	r.UnrollOps = binary.LittleEndian.Uint32(data[off:])
	off += 4
	gatesLen := binary.LittleEndian.Uint16(data[off:])
	off += 2
	if len(data) < off+int(gatesLen) {
		return TemplateRecord{}, fmt.Errorf("%w: template record gates truncated", ErrCorruption)
	}
	r.GatesEncoded = append([]byte(nil), data[off:off+int(gatesLen)]...)
	return r, nil
}

// WitnessRecord is the on-disk representation of a prefix witness (§3
// Witness). Byte layout, little-endian:
//
//	witness_id          u64
//	basis_id            u8
//	width               u8
//	witness_len         u16
//	witness_hash        32B
//	source_template_id  u64
//	gates_len           u16
//	gates_encoded       gates_len bytes
type WitnessRecord struct {
	WitnessID        uint64
	BasisID          gate.BasisID
	Width            uint8
	WitnessLen       uint16
	WitnessHash      [32]byte
	SourceTemplateID uint64
	GatesEncoded     []byte
}

const witnessHeaderSize = 8 + 1 + 1 + 2 + 32 + 8 + 2 // 54

func (r WitnessRecord) Encode() []byte {
	out := make([]byte, witnessHeaderSize+len(r.GatesEncoded))
	off := 0
	binary.LittleEndian.PutUint64(out[off:], r.WitnessID)
	off += 8
	out[off] = byte(r.BasisID)
	off++
	out[off] = r.Width
	off++
	binary.LittleEndian.PutUint16(out[off:], r.WitnessLen)
	off += 2
	copy(out[off:], r.WitnessHash[:])
	off += 32
	binary.LittleEndian.PutUint64(out[off:], r.SourceTemplateID)
	off += 8
	binary.LittleEndian.PutUint16(out[off:], uint16(len(r.GatesEncoded)))
	off += 2
	copy(out[off:], r.GatesEncoded)
	return out
}

func DecodeWitnessRecord(data []byte) (WitnessRecord, error) {
	if len(data) < witnessHeaderSize {
		return WitnessRecord{}, fmt.Errorf("%w: witness record too short (%d bytes)", ErrCorruption, len(data))
	}
	var r WitnessRecord
	off := 0
	r.WitnessID = binary.LittleEndian.Uint64(data[off:])
	off += 8
	r.BasisID = gate.BasisID(data[off])
	off++
	r.Width = data[off]
	off++
	r.WitnessLen = binary.LittleEndian.Uint16(data[off:])
	off += 2
	copy(r.WitnessHash[:], data[off:off+32])
	off += 32
	r.SourceTemplateID = binary.LittleEndian.Uint64(data[off:])
	off += 8
	gatesLen := binary.LittleEndian.Uint16(data[off:])
	off += 2
	if len(data) < off+int(gatesLen) {
		return WitnessRecord{}, fmt.Errorf("%w: witness record gates truncated", ErrCorruption)
	}
	r.GatesEncoded = append([]byte(nil), data[off:off+int(gatesLen)]...)
	return r, nil
}

// EncodeGates packs a gate list via its basis's SerializeGate, concatenated
// with no separators (ECA57's fixed 3-byte-per-gate layout and MCT's
// length-prefixed layout are both self-delimiting).
func EncodeGates(basis gate.Basis, gates []gate.Gate) []byte {
	var out []byte
	for _, g := range gates {
		out = append(out, basis.SerializeGate(g)...)
	}
	return out
}

// DecodeGates unpacks a byte blob produced by EncodeGates back into gates,
// for the given basis.
func DecodeGates(basisID gate.BasisID, data []byte) ([]gate.Gate, error) {
	switch basisID {
	case gate.BasisECA57:
		if len(data)%3 != 0 {
			return nil, fmt.Errorf("%w: eca57 gates_encoded length %d not a multiple of 3", ErrCorruption, len(data))
		}
		gates := make([]gate.Gate, 0, len(data)/3)
		for i := 0; i < len(data); i += 3 {
			gates = append(gates, gate.NewECA57Gate(data[i], data[i+1], data[i+2]))
		}
		return gates, nil
	case gate.BasisMCT:
		var gates []gate.Gate
		i := 0
		for i < len(data) {
			if i+2 > len(data) {
				return nil, fmt.Errorf("%w: mct gates_encoded truncated header", ErrCorruption)
			}
			target := data[i]
			numControls := int(data[i+1])
			i += 2
			if i+numControls > len(data) {
				return nil, fmt.Errorf("%w: mct gates_encoded truncated controls", ErrCorruption)
			}
			controls := append([]gate.Wire(nil), data[i:i+numControls]...)
			i += numControls
			gates = append(gates, gate.NewMCTGate(target, controls))
		}
		return gates, nil
	default:
		return nil, fmt.Errorf("%w: unknown basis id %d", ErrCorruption, basisID)
	}
}

package main

import (
	"fmt"

	"github.com/erigontech/revsynth/cnf"
	"github.com/erigontech/revsynth/encode"
	"github.com/erigontech/revsynth/gate"
)

// cellEncoder is the shape both ECA57Encoder and MCTEncoder share: enough
// to drive the solve-decode-exclude loop without the CLI caring which
// basis it's enumerating.
type cellEncoder interface {
	Builder() *cnf.Builder
	Decode(assignment []int) (gate.Circuit, error)
	ExcludeCircuit(c gate.Circuit) error
}

// newCellEncoder builds the encoder for one (width, gate_count) cell in
// the given basis.
func newCellEncoder(basisName string, width uint8, gateCount int) (cellEncoder, error) {
	switch basisName {
	case "eca57":
		return encode.NewECA57Encoder(width, gateCount, false, 0)
	case "mct":
		return encode.NewMCTEncoder(width, gateCount, 1, 0)
	default:
		return nil, fmt.Errorf("revsynth: unknown basis %q", basisName)
	}
}

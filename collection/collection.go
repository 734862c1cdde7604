package collection

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/erigontech/revsynth/gate"
)

// Collection is a dense 2D grid of DimGroups indexed by [width][gateCount],
// the store-less counterpart to a persistent template store: everything
// lives in memory for the lifetime of one CLI invocation.
type Collection struct {
	Basis         gate.Basis
	MaxWidth      uint8
	MaxGateCount  int
	groups        [][]*DimGroup // groups[width][gateCount]
}

// New allocates a Collection with an empty DimGroup for every (width, gc)
// pair in [0, maxWidth] x [0, maxGateCount].
func New(basis gate.Basis, maxWidth uint8, maxGateCount int) *Collection {
	groups := make([][]*DimGroup, maxWidth+1)
	for w := 0; w <= int(maxWidth); w++ {
		row := make([]*DimGroup, maxGateCount+1)
		for gc := 0; gc <= maxGateCount; gc++ {
			row[gc] = NewDimGroup(uint8(w), gc)
		}
		groups[w] = row
	}
	return &Collection{Basis: basis, MaxWidth: maxWidth, MaxGateCount: maxGateCount, groups: groups}
}

// Group returns the DimGroup at (width, gateCount), or nil if out of range.
func (c *Collection) Group(width uint8, gateCount int) *DimGroup {
	if int(width) >= len(c.groups) {
		return nil
	}
	row := c.groups[width]
	if gateCount < 0 || gateCount >= len(row) {
		return nil
	}
	return row[gateCount]
}

// Join merges every cell of other into the matching cell of c.
func (c *Collection) Join(other *Collection) error {
	if c.MaxWidth != other.MaxWidth || c.MaxGateCount != other.MaxGateCount {
		return fmt.Errorf("collection: join shape mismatch (%d,%d) != (%d,%d)",
			c.MaxWidth, c.MaxGateCount, other.MaxWidth, other.MaxGateCount)
	}
	for w := 0; w <= int(c.MaxWidth); w++ {
		for gc := 0; gc <= c.MaxGateCount; gc++ {
			if err := c.groups[w][gc].Join(other.groups[w][gc]); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoveReducibles drops, for every (width, gc), circuits that contain any
// smaller-gate-count identity at the same width as a subcircuit.
func (c *Collection) RemoveReducibles() error {
	for w := 0; w <= int(c.MaxWidth); w++ {
		for reducingGC := 0; reducingGC <= c.MaxGateCount; reducingGC++ {
			reducing := c.groups[w][reducingGC]
			for reductedGC := reducingGC + 1; reductedGC <= c.MaxGateCount; reductedGC++ {
				if err := c.groups[w][reductedGC].RemoveReducibles(reducing); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// RemoveDuplicates deduplicates every cell by canonical form.
func (c *Collection) RemoveDuplicates() error {
	for w := 0; w <= int(c.MaxWidth); w++ {
		for gc := 0; gc <= c.MaxGateCount; gc++ {
			if err := c.groups[w][gc].RemoveDuplicates(c.Basis); err != nil {
				return err
			}
		}
	}
	return nil
}

// jsonGroup is the wire shape of one DimGroup inside a Collection JSON export.
type jsonGroup struct {
	Width     uint8     `json:"width"`
	GateCount int       `json:"gate_count"`
	Circuits  [][][]int `json:"circuits"`
}

type jsonCollection struct {
	MaxWidth     uint8                `json:"max_width"`
	MaxGateCount int                  `json:"max_gate_count"`
	Groups       map[string]jsonGroup `json:"groups"`
}

func gateToInts(g gate.Gate) []int {
	out := make([]int, len(g.Wires))
	for i, w := range g.Wires {
		out[i] = int(w)
	}
	return out
}

// WriteJSON serializes c to w in the {max_width, max_gate_count, groups:
// {"W_GC": {...}}} shape documented for collection export.
func (c *Collection) WriteJSON(w io.Writer) error {
	out := jsonCollection{
		MaxWidth:     c.MaxWidth,
		MaxGateCount: c.MaxGateCount,
		Groups:       make(map[string]jsonGroup),
	}
	for width := 0; width <= int(c.MaxWidth); width++ {
		for gc := 0; gc <= c.MaxGateCount; gc++ {
			dg := c.groups[width][gc]
			if dg.Len() == 0 {
				continue
			}
			circuits := make([][][]int, len(dg.Circuits))
			for i, circ := range dg.Circuits {
				gs := make([][]int, len(circ.Gates))
				for j, g := range circ.Gates {
					gs[j] = gateToInts(g)
				}
				circuits[i] = gs
			}
			key := fmt.Sprintf("%d_%d", width, gc)
			out.Groups[key] = jsonGroup{Width: uint8(width), GateCount: gc, Circuits: circuits}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCompact writes the "# header" + one-line-per-circuit dump:
// W,GC:t,c1,c2;t,c1,c2;...
func (c *Collection) WriteCompact(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "# max_width=%d max_gate_count=%d\n", c.MaxWidth, c.MaxGateCount); err != nil {
		return err
	}
	for width := 0; width <= int(c.MaxWidth); width++ {
		for gc := 0; gc <= c.MaxGateCount; gc++ {
			dg := c.groups[width][gc]
			for _, circ := range dg.Circuits {
				gateStrs := make([]string, len(circ.Gates))
				for i, g := range circ.Gates {
					parts := make([]string, len(g.Wires))
					for j, wr := range g.Wires {
						parts[j] = strconv.Itoa(int(wr))
					}
					gateStrs[i] = strings.Join(parts, ",")
				}
				if _, err := fmt.Fprintf(bw, "%d,%d:%s\n", width, gc, strings.Join(gateStrs, ";")); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}

// ReadCompact parses the compact text dump format produced by WriteCompact
// and appends circuits into the matching cells of c.
func (c *Collection) ReadCompact(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		head, body, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("collection: malformed line %q", line)
		}
		dims := strings.Split(head, ",")
		if len(dims) != 2 {
			return fmt.Errorf("collection: malformed dims %q", head)
		}
		width, err := strconv.Atoi(dims[0])
		if err != nil {
			return err
		}
		gc, err := strconv.Atoi(dims[1])
		if err != nil {
			return err
		}
		dg := c.Group(uint8(width), gc)
		if dg == nil {
			return fmt.Errorf("collection: (%d,%d) out of range", width, gc)
		}
		circuit := gate.Circuit{Width: uint8(width)}
		if body != "" {
			for _, gs := range strings.Split(body, ";") {
				fields := strings.Split(gs, ",")
				wires := make([]gate.Wire, len(fields))
				for i, f := range fields {
					v, err := strconv.Atoi(f)
					if err != nil {
						return err
					}
					wires[i] = gate.Wire(v)
				}
				circuit.Gates = append(circuit.Gates, gate.Gate{Wires: wires})
			}
		}
		if err := dg.Append(circuit); err != nil {
			return err
		}
	}
	return scanner.Err()
}

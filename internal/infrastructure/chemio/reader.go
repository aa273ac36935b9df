// Package chemio reads and writes MDL molfiles (V2000) and SD files.
//
// Placeholder symbols R, R#, *, A and Q are read as the wildcard element.
// Explicit hydrogens are folded into their heavy atom on reading unless
// molecule.Graph.RemoveHydrogens has to keep them.  A record is posed when
// its header says 3D or any atom sits away from the origin.
// Per-atom provenance travels as the SD data items _Origin and _Confidence,
// both JSON lists indexed by atom.
package chemio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

const (
	// PropOrigin holds the per-atom origin lists of a record.
	PropOrigin = "_Origin"
	// PropConfidence holds the per-atom positional spread of a record.
	PropConfidence = "_Confidence"
	// PropHitNames names the hits a candidate should be placed against.
	PropHitNames = "hit_names"

	recordEnd = "$$$$"
	blockEnd  = "M  END"
)

// Record is one SD entry: a graph plus its data items.  Provenance items are
// applied to the graph and not repeated in Props.
type Record struct {
	Graph *molecule.Graph
	Props map[string]string
}

var wildcardSymbols = map[string]bool{"R": true, "R#": true, "*": true, "A": true, "Q": true}

// ─────────────────────────────────────────────────────────────────────────────
// Entry points
// ─────────────────────────────────────────────────────────────────────────────

// ReadFile reads every record of an SD file or the single entry of a molfile.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileAccess, "cannot open structure file").WithDetail(path)
	}
	defer f.Close()
	recs, err := ReadSDF(f)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New(errors.ErrCodeMolFileParse, "no molecules found").WithDetail(path)
	}
	return recs, nil
}

// ReadMolBlock parses a single molfile.
func ReadMolBlock(r io.Reader) (*molecule.Graph, error) {
	recs, err := ReadSDF(r)
	if err != nil {
		return nil, err
	}
	if len(recs) != 1 {
		return nil, errors.New(errors.ErrCodeMolFileParse, "expected exactly one molecule").
			WithDetail(fmt.Sprintf("found %d", len(recs)))
	}
	return recs[0].Graph, nil
}

// ParseMolBlock parses a molfile held in a string.
func ParseMolBlock(text string) (*molecule.Graph, error) {
	return ReadMolBlock(strings.NewReader(text))
}

// ReadSDF parses every record of r.  A trailing record without the $$$$
// terminator is accepted.
func ReadSDF(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		out   []Record
		lines []string
		first = 1
		line  = 0
	)
	flush := func() error {
		if isBlank(lines) {
			return nil
		}
		rec, err := parseRecord(lines, first)
		if err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	}
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == recordEnd {
			if err := flush(); err != nil {
				return nil, err
			}
			lines = lines[:0]
			first = line + 1
			continue
		}
		lines = append(lines, text)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMolFileParse, "read failed")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func isBlank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

// ─────────────────────────────────────────────────────────────────────────────
// Record parsing
// ─────────────────────────────────────────────────────────────────────────────

type parser struct {
	lines []string
	base  int
}

func (p parser) fail(offset int, msg string) error {
	return errors.New(errors.ErrCodeMolFileParse, msg).
		WithDetail(fmt.Sprintf("line %d", p.base+offset))
}

func parseRecord(lines []string, base int) (Record, error) {
	p := parser{lines: lines, base: base}
	if len(lines) < 4 {
		return Record{}, p.fail(0, "molfile header truncated")
	}
	g := molecule.NewGraph(strings.TrimSpace(lines[0]))

	counts := lines[3]
	if strings.Contains(counts, "V3000") {
		return Record{}, p.fail(3, "V3000 molfiles are not supported")
	}
	nAtoms, err1 := intCol(counts, 0, 3)
	nBonds, err2 := intCol(counts, 3, 6)
	if err1 != nil || err2 != nil || nAtoms < 0 || nBonds < 0 {
		return Record{}, p.fail(3, "bad counts line")
	}
	if len(lines) < 4+nAtoms+nBonds {
		return Record{}, p.fail(len(lines), "atom or bond block truncated")
	}

	for i := 0; i < nAtoms; i++ {
		atom, pos, err := parseAtomLine(lines[4+i])
		if err != nil {
			return Record{}, p.fail(4+i, err.Error())
		}
		g.AddAtom(atom, pos)
	}
	for i := 0; i < nBonds; i++ {
		off := 4 + nAtoms + i
		if err := parseBondLine(g, lines[off]); err != nil {
			return Record{}, p.fail(off, err.Error())
		}
	}

	rest := 4 + nAtoms + nBonds
	end := -1
	chargesReset := false
	for i := rest; i < len(lines); i++ {
		l := lines[i]
		if strings.HasPrefix(l, blockEnd) {
			end = i
			break
		}
		if strings.HasPrefix(l, "M  CHG") {
			if !chargesReset {
				for a := range g.Atoms {
					g.Atoms[a].Charge = 0
				}
				chargesReset = true
			}
			if err := parseChargeLine(g, l); err != nil {
				return Record{}, p.fail(i, err.Error())
			}
		}
	}
	if end < 0 {
		return Record{}, p.fail(len(lines), "missing M  END")
	}

	props, err := parseData(lines[end+1:])
	if err != nil {
		return Record{}, p.fail(end+1, err.Error())
	}
	if err := applyProvenance(g, props); err != nil {
		return Record{}, p.fail(end+1, err.Error())
	}
	if col(lines[1], 20, 22) == "3D" {
		g.MarkPosed()
	}
	g, _ = g.RemoveHydrogens()
	return Record{Graph: g, Props: props}, nil
}

// parseData collects "> <key>" items; values run until the next blank line.
func parseData(lines []string) (map[string]string, error) {
	props := make(map[string]string)
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if !strings.HasPrefix(l, ">") {
			continue
		}
		lt, gt := strings.Index(l, "<"), strings.LastIndex(l, ">")
		if lt < 0 || gt <= lt {
			return nil, fmt.Errorf("malformed data header %q", l)
		}
		key := l[lt+1 : gt]
		var value []string
		for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			i++
			value = append(value, lines[i])
		}
		props[key] = strings.Join(value, "\n")
	}
	return props, nil
}

func applyProvenance(g *molecule.Graph, props map[string]string) error {
	if raw, ok := props[PropOrigin]; ok {
		var entries []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return fmt.Errorf("%s: %v", PropOrigin, err)
		}
		if len(entries) != g.NumAtoms() {
			return fmt.Errorf("%s lists %d atoms, molecule has %d", PropOrigin, len(entries), g.NumAtoms())
		}
		for i, e := range entries {
			var origin []string
			if err := json.Unmarshal(e, &origin); err != nil {
				// "none"
				continue
			}
			g.SetOrigin(i, origin)
		}
		delete(props, PropOrigin)
	}
	if raw, ok := props[PropConfidence]; ok {
		var conf []float64
		if err := json.Unmarshal([]byte(raw), &conf); err != nil {
			return fmt.Errorf("%s: %v", PropConfidence, err)
		}
		if len(conf) != g.NumAtoms() {
			return fmt.Errorf("%s lists %d atoms, molecule has %d", PropConfidence, len(conf), g.NumAtoms())
		}
		for i, c := range conf {
			g.SetConfidence(i, c)
		}
		delete(props, PropConfidence)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Line parsing
// ─────────────────────────────────────────────────────────────────────────────

// col returns the trimmed fixed-width field [from, to) of line, tolerating
// short lines.
func col(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

func intCol(line string, from, to int) (int, error) {
	s := col(line, from, to)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// oldCharges maps the atom-block charge column to formal charges.
var oldCharges = map[int]int{1: 3, 2: 2, 3: 1, 5: -1, 6: -2, 7: -3}

func parseAtomLine(line string) (molecule.Atom, r3.Vec, error) {
	var xyz [3]float64
	for k := range xyz {
		v, err := strconv.ParseFloat(col(line, 10*k, 10*k+10), 64)
		if err != nil {
			return molecule.Atom{}, r3.Vec{}, fmt.Errorf("bad coordinate: %v", err)
		}
		xyz[k] = v
	}
	pos := r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	symbol := col(line, 31, 34)
	if symbol == "" {
		return molecule.Atom{}, pos, fmt.Errorf("missing element symbol")
	}
	atom := molecule.Atom{Element: symbol}
	if wildcardSymbols[symbol] {
		atom.Element = molecule.Wildcard
	} else if !molecule.KnownElement(symbol) {
		return molecule.Atom{}, pos, fmt.Errorf("unknown element %q", symbol)
	}
	code, err := intCol(line, 36, 39)
	if err != nil {
		return molecule.Atom{}, pos, fmt.Errorf("bad charge column: %v", err)
	}
	atom.Charge = oldCharges[code]
	parity, err := intCol(line, 39, 42)
	if err != nil {
		return molecule.Atom{}, pos, fmt.Errorf("bad parity column: %v", err)
	}
	switch parity {
	case 1:
		atom.Chirality = molecule.ChiralCW
	case 2:
		atom.Chirality = molecule.ChiralCCW
	}
	return atom, pos, nil
}

func parseBondLine(g *molecule.Graph, line string) error {
	a, err1 := intCol(line, 0, 3)
	b, err2 := intCol(line, 3, 6)
	t, err3 := intCol(line, 6, 9)
	if err1 != nil || err2 != nil || err3 != nil {
		return fmt.Errorf("bad bond line %q", line)
	}
	var order molecule.BondOrder
	switch t {
	case 1:
		order = molecule.BondSingle
	case 2:
		order = molecule.BondDouble
	case 3:
		order = molecule.BondTriple
	case 4:
		order = molecule.BondAromatic
	default:
		return fmt.Errorf("unsupported bond type %d", t)
	}
	if _, err := g.AddBond(a-1, b-1, order); err != nil {
		return err
	}
	if order == molecule.BondAromatic {
		g.Atoms[a-1].Aromatic = true
		g.Atoms[b-1].Aromatic = true
	}
	return nil
}

func parseChargeLine(g *molecule.Graph, line string) error {
	fields := strings.Fields(line[len("M  CHG"):])
	if len(fields) == 0 {
		return fmt.Errorf("empty M  CHG line")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || len(fields) < 1+2*n {
		return fmt.Errorf("malformed M  CHG line")
	}
	for k := 0; k < n; k++ {
		idx, err1 := strconv.Atoi(fields[1+2*k])
		chg, err2 := strconv.Atoi(fields[2+2*k])
		if err1 != nil || err2 != nil || idx < 1 || idx > g.NumAtoms() {
			return fmt.Errorf("malformed M  CHG entry")
		}
		g.Atoms[idx-1].Charge = chg
	}
	return nil
}

//Personal.AI order the ending

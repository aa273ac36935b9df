package chemio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

// chargeCodes is the inverse of oldCharges.
var chargeCodes = map[int]int{3: 1, 2: 2, 1: 3, -1: 5, -2: 6, -3: 7}

// MolBlock renders g as a V2000 molfile.
func MolBlock(g *molecule.Graph) (string, error) {
	var buf bytes.Buffer
	if err := WriteMolBlock(&buf, g); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteMolBlock writes g as a V2000 molfile terminated by M  END.
func WriteMolBlock(w io.Writer, g *molecule.Graph) error {
	if g.NumAtoms() > 999 || g.NumBonds() > 999 {
		return errors.New(errors.ErrCodeMolFileWrite, "molecule too large for V2000").WithDetail(g.Name)
	}
	bw := bufio.NewWriter(w)
	chiral := 0
	for _, a := range g.Atoms {
		if a.Chirality != molecule.ChiralNone {
			chiral = 1
			break
		}
	}
	dim := "3D"
	if !g.HasConformer() {
		dim = "2D"
	}
	fmt.Fprintf(bw, "%s\n  Frgmnstn          %s\n\n", g.Name, dim)
	fmt.Fprintf(bw, "%3d%3d  0  0%3d  0  0  0  0  0999 V2000\n", g.NumAtoms(), g.NumBonds(), chiral)

	var charged []int
	for i, a := range g.Atoms {
		p := g.Position(i)
		symbol := a.Element
		if a.IsWildcard() {
			symbol = "R"
		}
		parity := 0
		switch a.Chirality {
		case molecule.ChiralCW:
			parity = 1
		case molecule.ChiralCCW:
			parity = 2
		}
		fmt.Fprintf(bw, "%10.4f%10.4f%10.4f %-3s 0%3d%3d  0  0  0  0  0  0  0  0  0\n",
			p.X, p.Y, p.Z, symbol, chargeCodes[a.Charge], parity)
		if a.Charge != 0 {
			charged = append(charged, i)
		}
	}
	for _, b := range g.Bonds() {
		fmt.Fprintf(bw, "%3d%3d%3d  0\n", b.Begin+1, b.End+1, int(b.Order))
	}
	for start := 0; start < len(charged); start += 8 {
		end := start + 8
		if end > len(charged) {
			end = len(charged)
		}
		fmt.Fprintf(bw, "M  CHG%3d", end-start)
		for _, i := range charged[start:end] {
			fmt.Fprintf(bw, " %3d %3d", i+1, g.Atoms[i].Charge)
		}
		bw.WriteString("\n")
	}
	bw.WriteString(blockEnd + "\n")
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeMolFileWrite, "write failed").WithDetail(g.Name)
	}
	return nil
}

// WriteSDF writes records as an SD file.  Provenance items are emitted for
// every graph ahead of its other data items, which follow in key order.
func WriteSDF(w io.Writer, records []Record) error {
	for _, rec := range records {
		if err := writeRecord(w, rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes records to path as an SD file.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFileAccess, "cannot create structure file").WithDetail(path)
	}
	if err := WriteSDF(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeMolFileWrite, "close failed").WithDetail(path)
	}
	return nil
}

func writeRecord(w io.Writer, rec Record) error {
	if rec.Graph == nil {
		return errors.New(errors.ErrCodeMolFileWrite, "record without molecule")
	}
	if err := WriteMolBlock(w, rec.Graph); err != nil {
		return err
	}
	origin, confidence, err := provenanceItems(rec.Graph)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	writeItem(bw, PropOrigin, origin)
	writeItem(bw, PropConfidence, confidence)

	keys := make([]string, 0, len(rec.Props))
	for k := range rec.Props {
		if k == PropOrigin || k == PropConfidence {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeItem(bw, k, rec.Props[k])
	}
	bw.WriteString(recordEnd + "\n")
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeMolFileWrite, "write failed").WithDetail(rec.Graph.Name)
	}
	return nil
}

func writeItem(w *bufio.Writer, key, value string) {
	fmt.Fprintf(w, ">  <%s>\n%s\n\n", key, value)
}

// provenanceItems encodes origin lists ("none" for unassigned atoms) and
// confidences as JSON arrays.
func provenanceItems(g *molecule.Graph) (string, string, error) {
	origins := make([]interface{}, g.NumAtoms())
	conf := make([]float64, g.NumAtoms())
	for i := range origins {
		if o := g.Origin(i); len(o) > 0 {
			origins[i] = o
		} else {
			origins[i] = molecule.NoOrigin
		}
		conf[i] = g.Confidence(i)
	}
	ob, err := json.Marshal(origins)
	if err != nil {
		return "", "", errors.Wrap(err, errors.ErrCodeSerialization, "origin encoding failed")
	}
	cb, err := json.Marshal(conf)
	if err != nil {
		return "", "", errors.Wrap(err, errors.ErrCodeSerialization, "confidence encoding failed")
	}
	return string(ob), string(cb), nil
}

//Personal.AI order the ending

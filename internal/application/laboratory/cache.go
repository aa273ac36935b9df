package laboratory

import (
	"strconv"
	"strings"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/chemio"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/database/redis"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
	ptypes "github.com/mwinokan/Fragmenstein/pkg/types/placement"
)

// cacheKey hashes everything a placement depends on: the candidate
// structure, every selected hit with its pose, the attachment point and
// whether the output is minimized.
func cacheKey(task Task, hits []*molecule.Graph, minimized bool) (string, error) {
	if task.Candidate == nil {
		return "", errors.New(errors.CodeInvalidParam, "empty candidate")
	}
	parts := make([]string, 0, len(hits)+3)
	block, err := chemio.MolBlock(task.Candidate)
	if err != nil {
		return "", err
	}
	parts = append(parts, block)
	for _, h := range hits {
		hb, err := chemio.MolBlock(h)
		if err != nil {
			return "", err
		}
		parts = append(parts, hb)
	}
	attachment := "-"
	if a := task.Attachment; a != nil {
		f := func(x float64) string { return strconv.FormatFloat(x, 'f', 4, 64) }
		attachment = strings.Join([]string{f(a.X), f(a.Y), f(a.Z)}, ",")
	}
	parts = append(parts, attachment, strconv.FormatBool(minimized))
	return redis.Key(parts...), nil
}

// attachMolBlock stores g in the summary so a cached result can be turned
// back into a structure.
func attachMolBlock(s *ptypes.Summary, g *molecule.Graph) error {
	if s == nil || g == nil {
		return nil
	}
	block, err := chemio.MolBlock(g)
	if err != nil {
		return err
	}
	s.PositionedMolBlock = block
	return nil
}

// restore rebuilds the positioned graph of a cached summary, provenance
// included.
func restore(s *ptypes.Summary) (*molecule.Graph, error) {
	if s == nil || s.PositionedMolBlock == "" {
		return nil, errors.New(errors.ErrCodeNotFound, "summary carries no structure")
	}
	g, err := chemio.ParseMolBlock(s.PositionedMolBlock)
	if err != nil {
		return nil, err
	}
	for _, a := range s.Atoms {
		if a.Index < 0 || a.Index >= g.NumAtoms() {
			return nil, errors.New(errors.ErrCodeSerialization, "provenance index out of range")
		}
		g.SetOrigin(a.Index, a.Origin)
		g.SetConfidence(a.Index, a.Confidence)
	}
	if s.Name != "" {
		g.Name = s.Name
	}
	return g, nil
}

//Personal.AI order the ending

package placement

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

// Merge is the outcome of MergeHits.
type Merge struct {
	Scaffold *molecule.Graph
	// Hits are the tagged private copies, in input order.
	Hits      []*molecule.Graph
	Unmatched []string
}

// Compositor splices hits into a single scaffold.
type Compositor struct {
	spatial SpatialMatcher
	logger  logging.Logger
}

// NewCompositor returns a compositor using the given spatial matcher.
func NewCompositor(spatial SpatialMatcher, logger logging.Logger) *Compositor {
	return &Compositor{spatial: spatial, logger: logging.OrNop(logger)}
}

// ─────────────────────────────────────────────────────────────────────────────
// Hit preparation
// ─────────────────────────────────────────────────────────────────────────────

// PrepareHits deep-copies the hits with explicit hydrogens folded away,
// names unnamed ones "hit<i>" after their input position and tags every atom
// with origin "<name>.<index>" and confidence 0.  Hits without a conformer
// and duplicate names are rejected.
func PrepareHits(hits []*molecule.Graph) ([]*molecule.Graph, error) {
	if len(hits) == 0 {
		return nil, errors.New(errors.ErrCodeHitInvalid, "no hits supplied")
	}
	seen := make(map[string]bool, len(hits))
	out := make([]*molecule.Graph, len(hits))
	for i, h := range hits {
		if h == nil || h.NumAtoms() == 0 {
			return nil, errors.New(errors.ErrCodeHitInvalid, "empty hit").
				WithDetail(fmt.Sprintf("position %d", i))
		}
		c, _ := h.RemoveHydrogens()
		if c.Name == "" {
			c.Name = "hit" + strconv.Itoa(i)
		}
		if seen[c.Name] {
			return nil, errors.New(errors.ErrCodeHitInvalid, "duplicate hit name").WithDetail(c.Name)
		}
		seen[c.Name] = true
		if !c.HasConformer() {
			return nil, errors.New(errors.ErrCodeHitInvalid, "hit has no conformer").WithDetail(c.Name)
		}
		for a := 0; a < c.NumAtoms(); a++ {
			c.SetOrigin(a, []string{c.Name + "." + strconv.Itoa(a)})
			c.SetConfidence(a, 0)
		}
		out[i] = c
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Merging
// ─────────────────────────────────────────────────────────────────────────────

// MergeHits seeds the scaffold with the largest hit and splices the others in
// order of decreasing size.  A hit with no spatial overlap is retried once
// after all others; if it still fails it is reported in Unmatched.
func (c *Compositor) MergeHits(hits []*molecule.Graph) (*Merge, error) {
	prepared, err := PrepareHits(hits)
	if err != nil {
		return nil, err
	}
	order := make([]*molecule.Graph, len(prepared))
	copy(order, prepared)
	sort.SliceStable(order, func(i, j int) bool { return order[i].NumAtoms() > order[j].NumAtoms() })

	scaffold := order[0].Clone()
	var deferred []*molecule.Graph
	for _, h := range order[1:] {
		merged, err := c.MergePair(scaffold, h)
		if errors.IsConnectivity(err) {
			c.logger.Debug("hit deferred", logging.String("hit", h.Name), logging.String("scaffold", scaffold.Name))
			deferred = append(deferred, h)
			continue
		}
		if err != nil {
			return nil, err
		}
		scaffold = merged
	}

	var unmatched []string
	for _, h := range deferred {
		merged, err := c.MergePair(scaffold, h)
		if errors.IsConnectivity(err) {
			c.logger.Warn("hit could not be merged and is excluded",
				logging.String("hit", h.Name),
				logging.String("scaffold", scaffold.Name))
			unmatched = append(unmatched, h.Name)
			continue
		}
		if err != nil {
			return nil, err
		}
		scaffold = merged
	}

	c.logger.Info("hits merged",
		logging.String("scaffold", scaffold.Name),
		logging.Int("atoms", scaffold.NumAtoms()),
		logging.Int("hits", len(prepared)),
		logging.Strings("unmatched", unmatched))
	return &Merge{Scaffold: scaffold, Hits: prepared, Unmatched: unmatched}, nil
}

type cut struct {
	anchor int
	attachment
}

// MergePair splices the novel atoms of fragment onto a copy of scaffold.
// The two graphs must share a frame; overlap is found with the spatial
// matcher.  Novel atoms are grafted as teams, one connected block of unique
// atoms at a time, each re-bonded to the scaffold atoms its anchors were
// bonded to in the fragment.
func (c *Compositor) MergePair(scaffold, fragment *molecule.Graph) (*molecule.Graph, error) {
	overlap := c.spatial.PositionalMap(scaffold, fragment)
	if len(overlap) == 0 {
		return nil, errors.Connectivity(scaffold.Name, fragment.Name)
	}
	inverse := make(map[int]int, len(overlap))
	for s, f := range overlap {
		inverse[f] = s
	}
	mapped := make(map[int]bool, len(inverse))
	for f := range inverse {
		mapped[f] = true
	}

	frag := fragment.Clone()
	cats := categorize(frag, uniqueAtoms(frag, mapped))

	result := scaffold.Clone()
	result.Name = scaffold.Name + "-" + fragment.Name

	done := make(map[int]bool)
	spliced := 0
	for _, anchor := range cats.anchors() {
		if done[anchor] {
			continue
		}
		team := cats.team(frag, anchor)
		var cuts []cut
		var bonds []int
		for _, member := range team {
			atts, ok := cats.pairs[member]
			if !ok {
				continue
			}
			done[member] = true
			for _, at := range atts {
				cuts = append(cuts, cut{anchor: member, attachment: at})
				bonds = append(bonds, at.Bond)
			}
		}

		piece := frag.CutBonds(bonds)
		sub, remap := piece.Subgraph(piece.ComponentOf(anchor))
		offset := result.Append(sub)
		spliced += sub.NumAtoms()
		for _, ct := range cuts {
			target, ok := inverse[ct.Atom]
			if !ok {
				return nil, errors.New(errors.ErrCodeInternal, "attachment atom missing from overlap").
					WithDetail(fmt.Sprintf("%s atom %d", fragment.Name, ct.Atom))
			}
			if _, err := result.AddBond(offset+remap[ct.anchor], target, ct.Order); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeGraphInvalid, "splice bond rejected")
			}
		}
		c.logger.Debug("team spliced",
			logging.String("fragment", fragment.Name),
			logging.Int("anchor", anchor),
			logging.Int("atoms", sub.NumAtoms()),
			logging.Int("bonds", len(cuts)))
	}
	if left := len(cats.uniques) - spliced; left > 0 {
		c.logger.Debug("unique atoms without anchor dropped", logging.String("fragment", fragment.Name), logging.Int("atoms", left))
	}

	logIssues(c.logger, result, result.Sanitize())
	return result, nil
}

// logIssues reports revalidation problems as warnings.
func logIssues(logger logging.Logger, g *molecule.Graph, issues []molecule.Issue) {
	for _, is := range issues {
		logger.Warn("revalidation issue", logging.Err(errors.ValenceValidation(g.Name, is.Atom, is.String())))
	}
}

//Personal.AI order the ending

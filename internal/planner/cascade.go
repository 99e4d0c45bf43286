package planner

import (
	"graphql-datalayer/internal/mutaction"
	"graphql-datalayer/internal/path"
)

// CascadingDelete returns the relation-cleanup mutactions for deleting the
// node at startPoint: one per relation edge reachable through onDelete
// cascade declarations, deepest-first, so far rows are cleaned before the
// near rows they hang off.
func (pl *Planner) CascadingDelete(startPoint path.Path) []mutaction.Mutaction {
	return pl.cascadingDeleteMutactions(startPoint)
}

// collectCascadingPaths returns p plus every extension of p along chains of
// cascade-declared relation edges, preorder. The inverse of the edge just
// traversed is skipped, so the walk never immediately backtracks.
func (pl *Planner) collectCascadingPaths(p path.Path) []path.Path {
	out := []path.Path{p}
	for _, f := range p.RelationFieldsNotOnPath(pl.project) {
		if !f.CascadesDelete(p.LastModel()) {
			continue
		}
		related, err := pl.project.RelatedModel(f)
		if err != nil {
			continue
		}
		out = append(out, pl.collectCascadingPaths(p.Extend(related, f, nil))...)
	}
	return out
}

func (pl *Planner) cascadingDeleteMutactions(startPoint path.Path) []mutaction.Mutaction {
	var pending []path.Path
	for _, p := range pl.collectCascadingPaths(startPoint) {
		if p.Len() > startPoint.Len() {
			pending = appendPathUnique(pending, p)
		}
	}

	// Peel the pending set depth layer by depth layer. Shortened paths fold
	// back into the set; they are already present as collected prefixes, so
	// each edge is emitted exactly once.
	var out []mutaction.Mutaction
	for len(pending) > 0 {
		deepest := 0
		for _, p := range pending {
			if p.Len() > deepest {
				deepest = p.Len()
			}
		}

		var rest, shortened []path.Path
		for _, p := range pending {
			if p.Len() < deepest {
				rest = append(rest, p)
				continue
			}
			out = append(out, mutaction.NewCascadingDeleteRelationMutactions(pl.project, p))
			if s := p.RemoveLastEdge(); s.Len() > startPoint.Len() {
				shortened = append(shortened, s)
			}
		}
		pending = rest
		for _, s := range shortened {
			pending = appendPathUnique(pending, s)
		}
	}
	return out
}

func appendPathUnique(paths []path.Path, p path.Path) []path.Path {
	for _, existing := range paths {
		if pathEqual(existing, p) {
			return paths
		}
	}
	return append(paths, p)
}

func pathEqual(a, b path.Path) bool {
	return a.Len() == b.Len() && a.HasPrefix(b)
}

package opc

import (
	"encoding/xml"
	"path"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Relationship is one entry of a .rels part. It belongs to exactly one
// source part and is immutable once parsed.
type Relationship struct {
	// ID is the relationship id, unique only within the owning part.
	ID string
	// Type is the relationship type URI.
	Type string
	// Target is the target, normalized to a package path for internal
	// relationships and left as-is for external ones.
	Target string
	// External reports whether the target lies outside the package.
	External bool
}

type relationshipsXML struct {
	Relationships []struct {
		ID         string `xml:"Id,attr"`
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// relsPartFor derives the .rels part path for a source part by the
// <dir>/_rels/<basename>.rels convention. The package root ("") maps to
// _rels/.rels.
func relsPartFor(sourcePart string) string {
	if sourcePart == "" {
		return "_rels/.rels"
	}
	return path.Join(path.Dir(sourcePart), "_rels", path.Base(sourcePart)+".rels")
}

// normalizeTarget resolves a relationship target against the source
// part's directory, collapsing ".." segments. Targets escaping the
// package root are rejected.
func normalizeTarget(sourcePart, target string) (string, error) {
	var resolved string
	if strings.HasPrefix(target, "/") {
		resolved = path.Clean(strings.TrimPrefix(target, "/"))
	} else {
		resolved = path.Clean(path.Join(path.Dir(sourcePart), target))
	}
	if resolved == ".." || strings.HasPrefix(resolved, "../") {
		return "", pkgerrors.Wrapf(ErrUnresolvedRelationship,
			"target %q escapes package root", target)
	}
	return resolved, nil
}

// Rels returns the relationship table of a source part, keyed by
// relationship id. The table is scoped strictly to that part — ids are
// never global. A missing .rels part yields an empty table, not an
// error. Tables are parsed lazily and cached for the package lifetime.
func (p *Package) Rels(sourcePart string) (map[string]Relationship, error) {
	p.relsMu.Lock()
	defer p.relsMu.Unlock()

	if cached, ok := p.rels[sourcePart]; ok {
		return cached, nil
	}

	table := make(map[string]Relationship)
	relsPart := relsPartFor(sourcePart)
	f, ok := p.files[relsPart]
	if !ok {
		p.rels[sourcePart] = table
		return table, nil
	}

	rc, err := f.Open()
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open %s", relsPart)
	}
	defer rc.Close()

	var parsed relationshipsXML
	if err := xml.NewDecoder(rc).Decode(&parsed); err != nil {
		return nil, pkgerrors.Wrapf(ErrMalformedXML, "%s: %v", relsPart, err)
	}

	for _, r := range parsed.Relationships {
		rel := Relationship{ID: r.ID, Type: r.Type, Target: r.Target}
		if strings.EqualFold(r.TargetMode, "External") {
			rel.External = true
		} else {
			normalized, err := normalizeTarget(sourcePart, r.Target)
			if err != nil {
				// Skip the bad entry; the id stays unresolvable.
				continue
			}
			rel.Target = normalized
		}
		table[r.ID] = rel
	}

	p.rels[sourcePart] = table
	return table, nil
}

// Resolve maps (source part, relationship id) to the target part path.
// It fails with ErrUnresolvedRelationship when the id is unknown for the
// source part or points outside the package, and with ErrPartNotFound
// when the resolved part does not exist.
func (p *Package) Resolve(sourcePart, relID string) (string, error) {
	table, err := p.Rels(sourcePart)
	if err != nil {
		return "", err
	}
	rel, ok := table[relID]
	if !ok {
		return "", pkgerrors.Wrapf(ErrUnresolvedRelationship,
			"id %q in %s", relID, sourcePart)
	}
	if rel.External {
		return "", pkgerrors.Wrapf(ErrUnresolvedRelationship,
			"id %q in %s targets external resource %s", relID, sourcePart, rel.Target)
	}
	if !p.HasPart(rel.Target) {
		return "", pkgerrors.Wrapf(ErrPartNotFound,
			"%s (target of %q in %s)", rel.Target, relID, sourcePart)
	}
	return rel.Target, nil
}

// Package opc provides read access to OOXML packages: the zip container
// itself and the relationship graph connecting its parts.
package opc

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"sort"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrCorruptPackage indicates the input is not a readable OOXML
	// package. It is the only fatal error of an extraction run.
	ErrCorruptPackage = errors.New("corrupt package")
	// ErrPartNotFound indicates a referenced part is absent.
	ErrPartNotFound = errors.New("part not found")
	// ErrUnresolvedRelationship indicates a relationship id could not be
	// resolved to an internal part for its source part.
	ErrUnresolvedRelationship = errors.New("unresolved relationship")
	// ErrMalformedXML indicates a part's XML could not be parsed.
	ErrMalformedXML = errors.New("malformed xml")
)

const contentTypesPart = "[Content_Types].xml"

// Package is an opened OOXML container. It is immutable once opened;
// concurrent reads of distinct parts are safe.
type Package struct {
	files map[string]*zip.File
	names []string

	relsMu sync.Mutex
	rels   map[string]map[string]Relationship

	closeOnce sync.Once
}

// Open opens a package from bytes. It fails with ErrCorruptPackage when
// the bytes are not a valid zip archive or the mandatory content-types
// part is missing.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, pkgerrors.Wrap(ErrCorruptPackage, err.Error())
	}

	p := &Package{
		files: make(map[string]*zip.File, len(zr.File)),
		rels:  make(map[string]map[string]Relationship),
	}
	for _, f := range zr.File {
		p.files[f.Name] = f
		p.names = append(p.names, f.Name)
	}
	sort.Strings(p.names)

	if _, ok := p.files[contentTypesPart]; !ok {
		return nil, pkgerrors.Wrap(ErrCorruptPackage, "missing "+contentTypesPart)
	}
	return p, nil
}

// OpenFile opens a package from a file on disk.
func OpenFile(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Open(data)
}

// Parts returns all part names in lexical order.
func (p *Package) Parts() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// HasPart reports whether the named part exists.
func (p *Package) HasPart(name string) bool {
	_, ok := p.files[name]
	return ok
}

// ReadPart returns the bytes of the named part, failing with
// ErrPartNotFound when it is absent.
func (p *Package) ReadPart(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, pkgerrors.Wrap(ErrPartNotFound, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open part %s", name)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "read part %s", name)
	}
	return data, nil
}

// Close releases the package. It is safe to call more than once; only
// the first call has effect.
func (p *Package) Close() error {
	p.closeOnce.Do(func() {
		p.files = nil
		p.names = nil
		p.relsMu.Lock()
		p.rels = nil
		p.relsMu.Unlock()
	})
	return nil
}

// Package artifacts renders type-appropriate previews of cataloged output
// files and bundles whole run trees for download. Previews re-read the file
// at render time; a path that vanished since cataloging fails that one
// preview without affecting any other.
package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"foldpanel/internal/catalog"
)

// previewLimit caps inline text for cif fallbacks and pdb previews.
const previewLimit = 1000

// truncationMarker is appended whenever inline text was cut short.
const truncationMarker = "..."

// Kind states how a preview should be displayed.
type Kind string

const (
	KindJSON      Kind = "json"
	KindText      Kind = "text"
	KindStructure Kind = "structure"
	KindNone      Kind = "none"
)

// StructureView is the payload handed to the external molecular renderer,
// plus a textual fallback for when no renderer is available.
type StructureView struct {
	Format         string `json:"format"`
	Data           string `json:"data"`
	Representation string `json:"representation"`
	Surface        bool   `json:"surface"`
	Height         int    `json:"height"`
	Fallback       string `json:"fallback"`
}

// Preview is one file's render-ready view. SizeBytes is always populated;
// ParseError carries an in-band failure (e.g. malformed JSON) instead of
// aborting the preview.
type Preview struct {
	Name       string           `json:"name"`
	Path       string           `json:"path"`
	Category   catalog.Category `json:"category"`
	Kind       Kind             `json:"kind"`
	SizeBytes  int64            `json:"size_bytes"`
	Text       string           `json:"text,omitempty"`
	JSON       json.RawMessage  `json:"json,omitempty"`
	Structure  *StructureView   `json:"structure,omitempty"`
	Truncated  bool             `json:"truncated,omitempty"`
	ParseError string           `json:"parse_error,omitempty"`
}

// Build produces the preview for path under the given category. It fails
// only when the file cannot be read; content-level problems are reported
// inside the preview.
func Build(path string, category catalog.Category) (*Preview, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat artifact: %w", err)
	}

	p := &Preview{
		Name:      filepath.Base(path),
		Path:      path,
		Category:  category,
		SizeBytes: info.Size(),
	}

	if category == catalog.CategoryOther {
		// Size only, no content preview.
		p.Kind = KindNone
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	switch category {
	case catalog.CategoryJSON:
		p.Kind = KindJSON
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			p.ParseError = fmt.Sprintf("invalid JSON: %v", err)
			break
		}
		p.JSON = json.RawMessage(buf.Bytes())
	case catalog.CategoryLog:
		// Full text verbatim, never truncated.
		p.Kind = KindText
		p.Text = string(data)
	case catalog.CategoryCIF:
		p.Kind = KindStructure
		text := string(data)
		fallback, truncated := truncate(text, previewLimit)
		p.Truncated = truncated
		p.Structure = &StructureView{
			Format:         "cif",
			Data:           text,
			Representation: "cartoon",
			Surface:        false,
			Height:         600,
			Fallback:       fallback,
		}
	case catalog.CategoryPDB:
		// Full content is never shown inline regardless of size.
		p.Kind = KindText
		p.Text, p.Truncated = truncate(string(data), previewLimit)
	}

	return p, nil
}

// truncate caps s at limit characters, appending the truncation marker when
// anything was cut.
func truncate(s string, limit int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= limit {
		return s, false
	}
	return string(runes[:limit]) + truncationMarker, true
}

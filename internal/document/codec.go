package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the on-disk document encoding.
type Format uint8

const (
	FormatJSON Format = iota + 1
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// Ext returns the canonical file extension including the dot.
func (f Format) Ext() string {
	if f == FormatMsgpack {
		return ".msgpack"
	}
	return ".json"
}

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "msgpack", "mpk":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("invalid document format %q (expected json|msgpack)", s)
	}
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("%s: unknown document extension (expected .json, .msgpack or .mpk)", path)
	}
}

type fileAnnotation struct {
	ID       int64          `json:"id" msgpack:"id"`
	Type     string         `json:"type" msgpack:"type"`
	Start    int64          `json:"start" msgpack:"start"`
	End      int64          `json:"end" msgpack:"end"`
	Features map[string]any `json:"features,omitempty" msgpack:"features,omitempty"`
}

type fileDocument struct {
	Text        string                      `json:"text" msgpack:"text"`
	Annotations map[string][]fileAnnotation `json:"annotations,omitempty" msgpack:"annotations,omitempty"`
}

// Decode reads a document in the given format.
func Decode(r io.Reader, f Format) (*Document, error) {
	var fd fileDocument
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&fd); err != nil {
			return nil, fmt.Errorf("decode json document: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&fd); err != nil {
			return nil, fmt.Errorf("decode msgpack document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported document format %v", f)
	}
	return fromFile(&fd)
}

func fromFile(fd *fileDocument) (*Document, error) {
	doc := New(fd.Text)
	names := make([]string, 0, len(fd.Annotations))
	for name := range fd.Annotations {
		names = append(names, name)
	}
	// deterministic set creation order
	slices.Sort(names)
	for _, name := range names {
		set := doc.Set(name)
		for i, fa := range fd.Annotations[name] {
			ann, err := fa.toAnnotation()
			if err != nil {
				return nil, fmt.Errorf("set %q annotation %d: %w", name, i, err)
			}
			if err := set.Insert(ann); err != nil {
				return nil, fmt.Errorf("set %q annotation %d: %w", name, i, err)
			}
		}
	}
	return doc, nil
}

func (fa fileAnnotation) toAnnotation() (*Annotation, error) {
	id, err := safecast.Conv[int](fa.ID)
	if err != nil {
		return nil, fmt.Errorf("id overflow: %w", err)
	}
	start, err := safecast.Conv[int](fa.Start)
	if err != nil {
		return nil, fmt.Errorf("start overflow: %w", err)
	}
	end, err := safecast.Conv[int](fa.End)
	if err != nil {
		return nil, fmt.Errorf("end overflow: %w", err)
	}
	return &Annotation{
		ID:       id,
		Type:     fa.Type,
		Start:    start,
		End:      end,
		Features: Features(fa.Features),
	}, nil
}

func toFile(d *Document) *fileDocument {
	fd := &fileDocument{Text: d.text}
	if len(d.sets) == 0 {
		return fd
	}
	fd.Annotations = make(map[string][]fileAnnotation, len(d.sets))
	for _, name := range d.SetNames() {
		anns := d.sets[name].Sorted()
		out := make([]fileAnnotation, 0, len(anns))
		for _, a := range anns {
			out = append(out, fileAnnotation{
				ID:       int64(a.ID),
				Type:     a.Type,
				Start:    int64(a.Start),
				End:      int64(a.End),
				Features: a.Features,
			})
		}
		fd.Annotations[name] = out
	}
	return fd
}

// Encode writes a document in the given format.
func Encode(w io.Writer, d *Document, f Format) error {
	fd := toFile(d)
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(fd)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		return enc.Encode(fd)
	default:
		return fmt.Errorf("unsupported document format %v", f)
	}
}

// Load reads a document from disk and also returns its raw bytes.
func Load(path string) (*Document, []byte, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, nil, err
	}
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := Decode(bytes.NewReader(raw), f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, raw, nil
}

// Save writes a document atomically through a temporary file.
func Save(path string, d *Document, f Format) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := Encode(tmp, d, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

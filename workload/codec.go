package workload

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4"
)

// Codec is one candidate container implementation under comparison.
// Paths ending in ".lz4" are transparently frame-compressed.
type Codec interface {
	Name() string
	Version() string
	Ext() string
	Open(path string) (*Recording, error)
	Save(rec *Recording, path string) error
}

// Codecs returns the candidates in comparison order.
func Codecs() []Codec {
	return []Codec{GobCodec{}, JSONCodec{}}
}

// GobCodec stores recordings in the gob binary container format.
type GobCodec struct{}

func (GobCodec) Name() string    { return "gob" }
func (GobCodec) Version() string { return "1.2.0" }
func (GobCodec) Ext() string     { return ".gob" }

func (GobCodec) Open(path string) (*Recording, error) {
	return openWith(path, func(r io.Reader) (*Recording, error) {
		var rec Recording
		if err := gob.NewDecoder(r).Decode(&rec); err != nil {
			return nil, err
		}

		return &rec, nil
	})
}

func (GobCodec) Save(rec *Recording, path string) error {
	return saveWith(path, func(w io.Writer) error {
		return gob.NewEncoder(w).Encode(rec)
	})
}

// JSONCodec stores recordings in the JSON container format.
type JSONCodec struct{}

func (JSONCodec) Name() string    { return "json" }
func (JSONCodec) Version() string { return "1.1.0" }
func (JSONCodec) Ext() string     { return ".json" }

func (JSONCodec) Open(path string) (*Recording, error) {
	return openWith(path, func(r io.Reader) (*Recording, error) {
		var rec Recording
		if err := json.NewDecoder(r).Decode(&rec); err != nil {
			return nil, err
		}

		return &rec, nil
	})
}

func (JSONCodec) Save(rec *Recording, path string) error {
	return saveWith(path, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(rec)
	})
}

// Convert decodes src with one codec and encodes it to dst with
// another.
func Convert(from, to Codec, src, dst string) error {
	rec, err := from.Open(src)
	if err != nil {
		return fmt.Errorf("convert: open %s: %w", src, err)
	}

	if err := to.Save(rec, dst); err != nil {
		return fmt.Errorf("convert: save %s: %w", dst, err)
	}

	return nil
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".lz4")
}

func openWith(
	path string,
	decode func(io.Reader) (*Recording, error),
) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed(path) {
		r = lz4.NewReader(f)
	}

	rec, err := decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return rec, nil
}

func saveWith(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var w io.Writer = f

	var zw *lz4.Writer
	if compressed(path) {
		zw = lz4.NewWriter(f)
		w = zw
	}

	if err := encode(w); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			f.Close()
			return fmt.Errorf("flush %s: %w", path, err)
		}
	}

	return f.Close()
}

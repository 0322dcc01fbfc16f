package ohh

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AkatukiSora/pokernow-ohh/internal/fileutil"
	"github.com/AkatukiSora/pokernow-ohh/internal/parser"
)

// Writer produces one .ohh file per table.
type Writer struct {
	dir      string
	prefix   string
	settings parser.Settings
}

func NewWriter(dir, prefix string, settings parser.Settings) *Writer {
	return &Writer{dir: dir, prefix: prefix, settings: settings}
}

// Path is where the table's documents are written: <prefix>_<table>.ohh.
func (w *Writer) Path(table string) string {
	name := table + ".ohh"
	if w.prefix != "" {
		name = w.prefix + "_" + name
	}
	return filepath.Join(w.dir, name)
}

// WriteTable replaces the table's file with one document per hand, in order.
func (w *Writer) WriteTable(table string, hands []*parser.Hand) (string, error) {
	path := w.Path(table)
	err := fileutil.WriteAtomic(path, 0o644, func(out io.Writer) error {
		return Encode(out, hands, w.settings)
	})
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Encode writes each hand as an indented {"ohh": ...} object followed by a
// blank line.
func Encode(out io.Writer, hands []*parser.Hand, settings parser.Settings) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "    ")
	for _, h := range hands {
		if err := enc.Encode(Envelope{OHH: FromHand(h, settings)}); err != nil {
			return fmt.Errorf("encode hand %s: %w", h.Key(), err)
		}
		if _, err := io.WriteString(out, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads every document from a stream written by Encode.
func Decode(r io.Reader) ([]Document, error) {
	dec := json.NewDecoder(r)
	var docs []Document
	for {
		var env Envelope
		err := dec.Decode(&env)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return docs, fmt.Errorf("decode document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, env.OHH)
	}
}

func ReadFile(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

package setlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Export modes, matching the config values.
const (
	ModeCombined = "combined"
	ModePerTier  = "per-tier"
)

// Extension is the filename extension for exported setlists.
const Extension = ".setlist"

// ErrVerify reports an exported file that did not read back identical to
// the in-memory setlist.
var ErrVerify = errors.New("exported setlist failed verification")

// Export writes the document under dir using base as the filename stem.
// Combined mode produces one file; per-tier mode produces one flat file per
// tier. The written paths are returned in order.
func Export(dir, base string, doc Document, mode string) ([]string, error) {
	if len(doc.Tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers to export", ErrCodec)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	switch mode {
	case ModeCombined:
		data, err := EncodeCombined(doc)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, base+Extension)
		if err := writeAndVerify(path, data, doc); err != nil {
			return nil, err
		}
		return []string{path}, nil

	case ModePerTier:
		paths := make([]string, 0, len(doc.Tiers))
		for i, tier := range doc.Tiers {
			data, err := EncodeFlat(tier)
			if err != nil {
				return nil, err
			}
			path := filepath.Join(dir, fmt.Sprintf("%s-%02d%s", base, i+1, Extension))
			want := Document{Tiers: []TierRecord{{Fingerprints: tier.Fingerprints}}}
			if err := writeAndVerify(path, data, want); err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
		return paths, nil

	default:
		return nil, fmt.Errorf("unknown export mode %q", mode)
	}
}

// writeAndVerify saves atomically (temp file then rename), then reads the
// artifact back and decodes it against the expected document. A setlist the
// game cannot read must never be reported as written.
func writeAndVerify(path string, data []byte, want Document) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write setlist: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace setlist: %w", err)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("re-read setlist: %w", err)
	}
	got, err := Decode(written)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerify, err)
	}
	if !documentsEqual(got, want) {
		return fmt.Errorf("%w: %s decoded differently than written", ErrVerify, path)
	}
	return nil
}

func documentsEqual(a, b Document) bool {
	if len(a.Tiers) != len(b.Tiers) {
		return false
	}
	for i := range a.Tiers {
		if a.Tiers[i].Name != b.Tiers[i].Name {
			return false
		}
		if len(a.Tiers[i].Fingerprints) != len(b.Tiers[i].Fingerprints) {
			return false
		}
		for j := range a.Tiers[i].Fingerprints {
			if a.Tiers[i].Fingerprints[j] != b.Tiers[i].Fingerprints[j] {
				return false
			}
		}
	}
	return true
}

// ImportFile reads a setlist in either layout. Flat files take their tier
// name from the filename stem.
func ImportFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read setlist: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return Document{}, err
	}
	for i := range doc.Tiers {
		if doc.Tiers[i].Name == "" {
			stem := filepath.Base(path)
			doc.Tiers[i].Name = stem[:len(stem)-len(filepath.Ext(stem))]
		}
	}
	return doc, nil
}

package setlist

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"chcareer/internal/fingerprint"
	"chcareer/internal/tiering"
)

// ErrCodec is the root of every decode failure. Corruption is a hard error;
// a truncated or miswritten setlist is never partially recovered.
var ErrCodec = errors.New("setlist codec error")

// combinedMagic opens the combined multi-tier layout.
var combinedMagic = []byte("CHCR")

// flatMagic opens the game-native flat layout.
var flatMagic = []byte{0xEA, 0xEC, 0x33, 0x01}

const combinedVersion = 1

// flatRecordPrefix and flatRecordSuffix frame each fingerprint in the flat
// layout; the byte values come from the game's own files.
var (
	flatRecordPrefix = []byte{0x20}
	flatRecordSuffix = []byte{0x64, 0x00}
)

// TierRecord is one tier as it appears on disk: a display name and the
// fingerprints of its songs in rank order. Flat files carry no name.
type TierRecord struct {
	Name         string
	Fingerprints []string
}

// Document is the on-disk shape of a setlist.
type Document struct {
	Tiers []TierRecord
}

// FromSetlist flattens a built setlist into its exportable form.
func FromSetlist(s *tiering.Setlist) Document {
	var doc Document
	for _, tier := range s.Tiers {
		record := TierRecord{Name: tier.Name}
		for i := range tier.Songs {
			record.Fingerprints = append(record.Fingerprints, tier.Songs[i].Fingerprint)
		}
		doc.Tiers = append(doc.Tiers, record)
	}
	return doc
}

func validateFingerprints(record TierRecord) error {
	for _, fp := range record.Fingerprints {
		if !fingerprint.Valid(fp) {
			return fmt.Errorf("%w: invalid fingerprint %q in tier %q", ErrCodec, fp, record.Name)
		}
	}
	return nil
}

// EncodeCombined renders the combined layout: magic, u16 version, u32 tier
// count, then per tier a u16-length name, u32 song count, and the raw
// 32-byte fingerprints. All integers little-endian.
func EncodeCombined(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(combinedMagic)
	var scratch [4]byte
	binary.LittleEndian.PutUint16(scratch[:2], combinedVersion)
	buf.Write(scratch[:2])
	binary.LittleEndian.PutUint32(scratch[:4], uint32(len(doc.Tiers)))
	buf.Write(scratch[:4])

	for _, tier := range doc.Tiers {
		if err := validateFingerprints(tier); err != nil {
			return nil, err
		}
		name := []byte(tier.Name)
		if len(name) > 0xFFFF {
			return nil, fmt.Errorf("%w: tier name %d bytes long", ErrCodec, len(name))
		}
		binary.LittleEndian.PutUint16(scratch[:2], uint16(len(name)))
		buf.Write(scratch[:2])
		buf.Write(name)
		binary.LittleEndian.PutUint32(scratch[:4], uint32(len(tier.Fingerprints)))
		buf.Write(scratch[:4])
		for _, fp := range tier.Fingerprints {
			buf.WriteString(fp)
		}
	}
	return buf.Bytes(), nil
}

// EncodeFlat renders one tier in the game-native flat layout.
func EncodeFlat(tier TierRecord) ([]byte, error) {
	if err := validateFingerprints(tier); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(flatMagic)
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:4], uint32(len(tier.Fingerprints)))
	buf.Write(scratch[:4])
	for _, fp := range tier.Fingerprints {
		buf.Write(flatRecordPrefix)
		buf.WriteString(fp)
		buf.Write(flatRecordSuffix)
	}
	return buf.Bytes(), nil
}

// Decode sniffs the magic and parses whichever layout the data holds. Flat
// files decode into a single unnamed tier.
func Decode(data []byte) (Document, error) {
	switch {
	case bytes.HasPrefix(data, combinedMagic):
		return decodeCombined(data)
	case bytes.HasPrefix(data, flatMagic):
		fps, err := decodeFlat(data)
		if err != nil {
			return Document{}, err
		}
		return Document{Tiers: []TierRecord{{Fingerprints: fps}}}, nil
	default:
		return Document{}, fmt.Errorf("%w: unrecognized magic", ErrCodec)
	}
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: truncated at offset %d", ErrCodec, r.pos)
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *reader) u16() (uint16, error) {
	raw, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(raw), nil
}

func (r *reader) u32() (uint32, error) {
	raw, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

func decodeCombined(data []byte) (Document, error) {
	r := &reader{data: data, pos: len(combinedMagic)}

	version, err := r.u16()
	if err != nil {
		return Document{}, err
	}
	if version != combinedVersion {
		return Document{}, fmt.Errorf("%w: unsupported version %d", ErrCodec, version)
	}
	tierCount, err := r.u32()
	if err != nil {
		return Document{}, err
	}

	var doc Document
	for t := uint32(0); t < tierCount; t++ {
		nameLen, err := r.u16()
		if err != nil {
			return Document{}, err
		}
		nameRaw, err := r.take(int(nameLen))
		if err != nil {
			return Document{}, err
		}
		songCount, err := r.u32()
		if err != nil {
			return Document{}, err
		}
		record := TierRecord{Name: string(nameRaw)}
		for s := uint32(0); s < songCount; s++ {
			raw, err := r.take(fingerprint.Size)
			if err != nil {
				return Document{}, err
			}
			fp := string(raw)
			if !fingerprint.Valid(fp) {
				return Document{}, fmt.Errorf("%w: invalid fingerprint in tier %q", ErrCodec, record.Name)
			}
			record.Fingerprints = append(record.Fingerprints, fp)
		}
		doc.Tiers = append(doc.Tiers, record)
	}
	if r.pos != len(data) {
		return Document{}, fmt.Errorf("%w: %d trailing bytes", ErrCodec, len(data)-r.pos)
	}
	return doc, nil
}

func decodeFlat(data []byte) ([]string, error) {
	r := &reader{data: data, pos: len(flatMagic)}

	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	var fps []string
	for i := uint32(0); i < count; i++ {
		prefix, err := r.take(len(flatRecordPrefix))
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(prefix, flatRecordPrefix) {
			return nil, fmt.Errorf("%w: bad record framing at offset %d", ErrCodec, r.pos)
		}
		raw, err := r.take(fingerprint.Size)
		if err != nil {
			return nil, err
		}
		fp := string(raw)
		if !fingerprint.Valid(fp) {
			return nil, fmt.Errorf("%w: invalid fingerprint at offset %d", ErrCodec, r.pos)
		}
		suffix, err := r.take(len(flatRecordSuffix))
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(suffix, flatRecordSuffix) {
			return nil, fmt.Errorf("%w: bad record framing at offset %d", ErrCodec, r.pos)
		}
		fps = append(fps, fp)
	}
	if r.pos != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCodec, len(data)-r.pos)
	}
	return fps, nil
}

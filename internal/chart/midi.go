package chart

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// guitarTrackNames is the ordered priority list of track names holding the
// guitar-equivalent part in binary charts. Exact (case-insensitive) matches
// win in table order; charts with no named match fall back to the track with
// the most note events.
var guitarTrackNames = []string{
	"PART GUITAR",
	"T1 GEMS",
	"PART GUITAR COOP",
	"PART LEAD",
	"PART RHYTHM",
}

// Authoring tools shift lanes by octaves per difficulty; modulo folds every
// encoding into one lane range before chord deduplication.
const laneModulo = 12

const defaultUSPerQuarter = 500_000 // 120 BPM

var errMalformedMIDI = errors.New("malformed midi data")

type midiNote struct {
	tick int64
	lane uint8
}

type midiTrack struct {
	name  string
	notes []midiNote
}

type midiTempoEvent struct {
	tick         int64
	usPerQuarter int64
}

// analyzeMIDI parses the binary-track chart format, selects the
// guitar-equivalent track, and measures its chord density. Tempo events are
// honored from any track since authoring tools keep them in a dedicated one.
func analyzeMIDI(data []byte) (Summary, error) {
	division, tracks, tempoEvents, err := parseMIDI(data)
	if err != nil {
		return Summary{}, err
	}

	track := selectGuitarTrack(tracks)
	if track == nil || len(track.notes) == 0 {
		return Summary{}, errNoNotes
	}

	tempo := NewTempoMap(float64(defaultUSPerQuarter) / float64(division))
	for _, ev := range tempoEvents {
		tempo.Add(ev.tick, float64(ev.usPerQuarter)/float64(division))
	}

	seen := make(map[midiNote]struct{}, len(track.notes))
	onsets := make([]int64, 0, len(track.notes))
	for _, note := range track.notes {
		if _, dup := seen[note]; dup {
			continue
		}
		seen[note] = struct{}{}
		onsets = append(onsets, note.tick)
	}

	return measure(onsets, tempo)
}

func selectGuitarTrack(tracks []midiTrack) *midiTrack {
	for _, want := range guitarTrackNames {
		for i := range tracks {
			if strings.EqualFold(strings.TrimSpace(tracks[i].name), want) {
				return &tracks[i]
			}
		}
	}
	var best *midiTrack
	for i := range tracks {
		if best == nil || len(tracks[i].notes) > len(best.notes) {
			best = &tracks[i]
		}
	}
	return best
}

func parseMIDI(data []byte) (division int, tracks []midiTrack, tempoEvents []midiTempoEvent, err error) {
	if len(data) < 14 || string(data[0:4]) != "MThd" {
		return 0, nil, nil, fmt.Errorf("%w: missing header", errMalformedMIDI)
	}
	if binary.BigEndian.Uint32(data[4:8]) != 6 {
		return 0, nil, nil, fmt.Errorf("%w: unexpected header length", errMalformedMIDI)
	}
	trackCount := int(binary.BigEndian.Uint16(data[10:12]))
	rawDivision := binary.BigEndian.Uint16(data[12:14])
	if rawDivision&0x8000 != 0 {
		return 0, nil, nil, fmt.Errorf("%w: SMPTE time division unsupported", errMalformedMIDI)
	}
	division = int(rawDivision)
	if division == 0 {
		return 0, nil, nil, fmt.Errorf("%w: zero time division", errMalformedMIDI)
	}

	offset := 14
	for t := 0; t < trackCount; t++ {
		if offset+8 > len(data) {
			return 0, nil, nil, fmt.Errorf("%w: truncated track header", errMalformedMIDI)
		}
		if string(data[offset:offset+4]) != "MTrk" {
			return 0, nil, nil, fmt.Errorf("%w: bad track magic", errMalformedMIDI)
		}
		length := int(binary.BigEndian.Uint32(data[offset+4 : offset+8]))
		offset += 8
		if offset+length > len(data) {
			return 0, nil, nil, fmt.Errorf("%w: truncated track body", errMalformedMIDI)
		}

		track, events, err := parseTrack(data[offset : offset+length])
		if err != nil {
			return 0, nil, nil, err
		}
		tracks = append(tracks, track)
		tempoEvents = append(tempoEvents, events...)
		offset += length
	}

	return division, tracks, tempoEvents, nil
}

func parseTrack(body []byte) (midiTrack, []midiTempoEvent, error) {
	var (
		track       midiTrack
		tempoEvents []midiTempoEvent
		tick        int64
		running     byte
		pos         int
	)

	for pos < len(body) {
		delta, n, err := readVarint(body[pos:])
		if err != nil {
			return midiTrack{}, nil, err
		}
		pos += n
		tick += delta

		if pos >= len(body) {
			return midiTrack{}, nil, fmt.Errorf("%w: event cut short", errMalformedMIDI)
		}
		status := body[pos]
		if status < 0x80 {
			if running == 0 {
				return midiTrack{}, nil, fmt.Errorf("%w: data byte without running status", errMalformedMIDI)
			}
			status = running
		} else {
			pos++
			if status < 0xF0 {
				running = status
			}
		}

		switch {
		case status == 0xFF:
			if pos >= len(body) {
				return midiTrack{}, nil, fmt.Errorf("%w: meta event cut short", errMalformedMIDI)
			}
			metaType := body[pos]
			pos++
			length, n, err := readVarint(body[pos:])
			if err != nil {
				return midiTrack{}, nil, err
			}
			pos += n
			if pos+int(length) > len(body) {
				return midiTrack{}, nil, fmt.Errorf("%w: meta payload cut short", errMalformedMIDI)
			}
			payload := body[pos : pos+int(length)]
			pos += int(length)

			switch metaType {
			case 0x03:
				if track.name == "" {
					track.name = string(payload)
				}
			case 0x51:
				if len(payload) == 3 {
					us := int64(payload[0])<<16 | int64(payload[1])<<8 | int64(payload[2])
					if us > 0 {
						tempoEvents = append(tempoEvents, midiTempoEvent{tick: tick, usPerQuarter: us})
					}
				}
			}

		case status == 0xF0 || status == 0xF7:
			length, n, err := readVarint(body[pos:])
			if err != nil {
				return midiTrack{}, nil, err
			}
			pos += n
			if pos+int(length) > len(body) {
				return midiTrack{}, nil, fmt.Errorf("%w: sysex payload cut short", errMalformedMIDI)
			}
			pos += int(length)

		default:
			dataLen := 2
			if kind := status & 0xF0; kind == 0xC0 || kind == 0xD0 {
				dataLen = 1
			}
			if pos+dataLen > len(body) {
				return midiTrack{}, nil, fmt.Errorf("%w: channel event cut short", errMalformedMIDI)
			}
			if status&0xF0 == 0x90 && body[pos+1] > 0 {
				track.notes = append(track.notes, midiNote{tick: tick, lane: body[pos] % laneModulo})
			}
			pos += dataLen
		}
	}

	return track, tempoEvents, nil
}

func readVarint(data []byte) (int64, int, error) {
	var value int64
	for i := 0; i < len(data) && i < 4; i++ {
		value = value<<7 | int64(data[i]&0x7F)
		if data[i]&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: unterminated varint", errMalformedMIDI)
}

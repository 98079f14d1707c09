// Package terminal decides how binary descriptors are presented: raw bytes
// when stdout is piped into another program, a hex rendering when a person is
// looking at it.
package terminal

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// OutputMode selects the descriptor rendering on stdout.
type OutputMode int

const (
	// ModeAuto renders hex on a terminal and raw bytes otherwise.
	ModeAuto OutputMode = iota

	// ModeHex always renders hex.
	ModeHex

	// ModeRaw always writes raw bytes.
	ModeRaw
)

// Detector resolves the effective output mode.
type Detector struct {
	mode OutputMode
}

// NewDetector creates a detector with the given mode preference.
func NewDetector(mode OutputMode) *Detector {
	return &Detector{mode: mode}
}

// UseHex reports whether descriptors should be hex-rendered on stdout.
func (d *Detector) UseHex() bool {
	switch d.mode {
	case ModeHex:
		return true
	case ModeRaw:
		return false
	default:
		return StdoutIsTerminal()
	}
}

// StdoutIsTerminal reports whether stdout is connected to a terminal.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// WriteDescriptor writes a descriptor to w in the detector's mode. Hex output
// gets a trailing newline so it composes with shell pipelines.
func (d *Detector) WriteDescriptor(w io.Writer, data []byte) error {
	if d.UseHex() {
		_, err := fmt.Fprintln(w, hex.EncodeToString(data))
		return err
	}
	_, err := w.Write(data)
	return err
}

// ReadDescriptorInput interprets descriptor input that may be raw bytes or a
// hex string, as produced by WriteDescriptor in either mode.
func ReadDescriptorInput(data []byte) ([]byte, error) {
	trimmed := trimASCIISpace(data)
	if len(trimmed) > 0 && isHexString(trimmed) {
		decoded, err := hex.DecodeString(string(trimmed))
		if err != nil {
			return nil, fmt.Errorf("failed to decode hex descriptor: %w", err)
		}
		return decoded, nil
	}
	return data, nil
}

func trimASCIISpace(data []byte) []byte {
	start, end := 0, len(data)
	for start < end && isSpace(data[start]) {
		start++
	}
	for end > start && isSpace(data[end-1]) {
		end--
	}
	return data[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isHexString(data []byte) bool {
	if len(data)%2 != 0 {
		return false
	}
	for _, b := range data {
		switch {
		case b >= '0' && b <= '9', b >= 'a' && b <= 'f', b >= 'A' && b <= 'F':
		default:
			return false
		}
	}
	return true
}

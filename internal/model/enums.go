package model

import (
	"fmt"
	"strings"
)

// LoadMode selects how an uploaded catalog is merged into the stored one.
type LoadMode uint8

const (
	// LoadModeAppend keeps existing rows and inserts only unseen identities.
	LoadModeAppend LoadMode = iota
	// LoadModeReplace discards every existing row first.
	LoadModeReplace
)

func (m LoadMode) String() string {
	switch m {
	case LoadModeAppend:
		return "append"
	case LoadModeReplace:
		return "replace"
	default:
		return fmt.Sprintf("LoadMode(%d)", m)
	}
}

func (m LoadMode) Validate() error {
	if m > LoadModeReplace {
		return fmt.Errorf("unknown load mode: %d", m)
	}
	return nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
// The Portuguese form values of the store front-end are accepted as aliases.
func (m *LoadMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "append", "adicionar":
		*m = LoadModeAppend
	case "replace", "substituir":
		*m = LoadModeReplace
	default:
		return fmt.Errorf("unknown load mode: %s", text)
	}
	return nil
}

func (m LoadMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ExportSubset selects which catalog rows an export contains.
type ExportSubset uint8

const (
	ExportAll ExportSubset = iota
	ExportScanned
	ExportUnscanned
)

func (s ExportSubset) String() string {
	switch s {
	case ExportAll:
		return "all"
	case ExportScanned:
		return "scanned"
	case ExportUnscanned:
		return "unscanned"
	default:
		return fmt.Sprintf("ExportSubset(%d)", s)
	}
}

func (s ExportSubset) Validate() error {
	if s > ExportUnscanned {
		return fmt.Errorf("unknown export subset: %d", s)
	}
	return nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (s *ExportSubset) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "all":
		*s = ExportAll
	case "scanned":
		*s = ExportScanned
	case "unscanned":
		*s = ExportUnscanned
	default:
		return fmt.Errorf("unknown export subset: %s", text)
	}
	return nil
}

// ScannedFilter returns the scanned-state filter of the subset, nil meaning any.
func (s ExportSubset) ScannedFilter() *bool {
	switch s {
	case ExportScanned:
		v := true
		return &v
	case ExportUnscanned:
		v := false
		return &v
	default:
		return nil
	}
}

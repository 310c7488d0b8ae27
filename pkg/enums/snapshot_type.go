package enums

import "fmt"

// SnapshotType distinguishes scheduler-driven snapshots from user-requested ones.
type SnapshotType string

const (
	SnapshotTypeAuto   SnapshotType = "auto"
	SnapshotTypeManual SnapshotType = "manual"
)

var validSnapshotTypes = []SnapshotType{
	SnapshotTypeAuto,
	SnapshotTypeManual,
}

// String implements fmt.Stringer.
func (t SnapshotType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known SnapshotType.
func (t SnapshotType) IsValid() bool {
	for _, candidate := range validSnapshotTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseSnapshotType converts raw input into a SnapshotType.
func ParseSnapshotType(value string) (SnapshotType, error) {
	for _, candidate := range validSnapshotTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid snapshot type %q", value)
}

// Package history owns the translation history partitions. Store is the only
// writer of partition blobs; View is a per-screen cache layered on top.
package history

import (
	"errors"
	"fmt"
)

// Partition names an independent, capped history list.
type Partition string

const (
	// Recent holds the latest translations shown on the translate screen.
	Recent Partition = "recentTranslations"
	// Notes holds translations the user explicitly saved.
	Notes Partition = "translations"
)

const (
	DefaultRecentLimit = 10
	DefaultNotesLimit  = 50
)

var (
	// ErrStorageWrite is returned when a partition could not be persisted.
	ErrStorageWrite = errors.New("history storage write failed")
	// ErrNotFound is returned when a history entry is not found.
	ErrNotFound = errors.New("history entry not found")
	// ErrInvalidRecord is returned when Append is given an incomplete record.
	ErrInvalidRecord = errors.New("invalid translation record")
	// ErrUnknownPartition is returned by ParsePartition.
	ErrUnknownPartition = errors.New("unknown history partition")
)

// Partitions lists every partition in display order.
func Partitions() []Partition {
	return []Partition{Recent, Notes}
}

// ParsePartition accepts the stored partition names along with the short
// aliases used on the command line.
func ParsePartition(s string) (Partition, error) {
	switch s {
	case string(Recent), "recent":
		return Recent, nil
	case string(Notes), "notes", "saved":
		return Notes, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPartition, s)
	}
}

// Key is the kv key the partition blob is stored under.
func (p Partition) Key() string {
	return "history:" + string(p)
}

// Limits are the per-partition caps.
type Limits struct {
	Recent int
	Notes  int
}

// DefaultLimits returns the stock caps of 10 recent and 50 saved entries.
func DefaultLimits() Limits {
	return Limits{Recent: DefaultRecentLimit, Notes: DefaultNotesLimit}
}

// For returns the cap for p.
func (l Limits) For(p Partition) int {
	switch p {
	case Recent:
		if l.Recent > 0 {
			return l.Recent
		}
		return DefaultRecentLimit
	case Notes:
		if l.Notes > 0 {
			return l.Notes
		}
		return DefaultNotesLimit
	}
	return DefaultRecentLimit
}

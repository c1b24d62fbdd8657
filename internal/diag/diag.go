// Package diag defines the error kinds of an export run and the warning list
// used for failures that do not abort it.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Error kinds. Structural failures are returned wrapped; recoverable ones
// are collected as Warnings.
var (
	ErrUnsupportedTopology  = errors.New("unsupported topology")
	ErrUnresolvedGroupLink  = errors.New("unresolved group link")
	ErrMissingBoneReference = errors.New("missing bone reference")
	ErrAssetExport          = errors.New("asset export failure")
	ErrIO                   = errors.New("i/o failure")
)

// Kind names an error kind.
type Kind string

const (
	KindUnsupportedTopology  Kind = "UnsupportedTopology"
	KindUnresolvedGroupLink  Kind = "UnresolvedGroupLink"
	KindMissingBoneReference Kind = "MissingBoneReference"
	KindAssetExport          Kind = "AssetExportFailure"
	KindIO                   Kind = "IOFailure"
	KindUnknown              Kind = "Unknown"
)

// KindOf classifies an error by the sentinel it wraps.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrUnsupportedTopology):
		return KindUnsupportedTopology
	case errors.Is(err, ErrUnresolvedGroupLink):
		return KindUnresolvedGroupLink
	case errors.Is(err, ErrMissingBoneReference):
		return KindMissingBoneReference
	case errors.Is(err, ErrAssetExport):
		return KindAssetExport
	case errors.Is(err, ErrIO):
		return KindIO
	}
	return KindUnknown
}

// IOError wraps a write failure so that callers can match ErrIO.
func IOError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

// Warning is a recoverable failure tied to one subject (an image, a node path).
type Warning struct {
	Kind    Kind
	Subject string
	Err     error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %s: %v", w.Kind, w.Subject, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }

// Warnings accumulates the warnings of one export run in the order they occur.
type Warnings []Warning

// Add records err against subject. The kind is derived from err.
func (ws *Warnings) Add(subject string, err error) {
	*ws = append(*ws, Warning{Kind: KindOf(err), Subject: subject, Err: err})
}

// Merge appends another list.
func (ws *Warnings) Merge(other Warnings) {
	*ws = append(*ws, other...)
}

// Count returns how many warnings have the given kind.
func (ws Warnings) Count(kind Kind) int {
	n := 0
	for _, w := range ws {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// Log writes every warning at WARN level.
func (ws Warnings) Log(log *zap.Logger) {
	for _, w := range ws {
		log.Warn("export warning",
			zap.String("kind", string(w.Kind)),
			zap.String("subject", w.Subject),
			zap.Error(w.Err))
	}
}

func (ws Warnings) String() string {
	lines := make([]string, len(ws))
	for i, w := range ws {
		lines[i] = w.Error()
	}
	return strings.Join(lines, "\n")
}

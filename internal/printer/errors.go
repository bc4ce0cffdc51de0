package printer

import (
	"errors"
	"fmt"

	"gopretty/internal/doc"
)

// ErrUnknownDoc is returned when a document contains a value the printer
// does not handle.
var ErrUnknownDoc = errors.New("unknown document kind")

// ErrUnmatchedRegion is returned for a region end marker with no open region.
var ErrUnmatchedRegion = errors.New("region end without a matching start")

// UnresolvedGroupError reports an IfBreak that references a group which has
// not been printed yet.
type UnresolvedGroupError struct {
	ID doc.GroupID
}

func (e *UnresolvedGroupError) Error() string {
	return fmt.Sprintf("if-break references group %q before it was printed", e.ID)
}

// fatal carries a malformed-document error out of the print loop.
type fatal struct {
	err error
}

func abort(err error) {
	panic(fatal{err: err})
}

func unknownDoc(d doc.Doc) error {
	return fmt.Errorf("%w: %T", ErrUnknownDoc, d)
}

func unmatchedRegion(text string) error {
	return fmt.Errorf("%w: %q", ErrUnmatchedRegion, text)
}

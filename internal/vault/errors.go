package vault

import (
	"fmt"

	apperrors "github.com/peopledex/peopledex/internal/errors"
	"github.com/peopledex/peopledex/internal/person"
)

// errInvalidRange reports a record whose source range does not fit its
// document, which means the document changed since the record was parsed.
func errInvalidRange(rec *person.Record) error {
	msg := fmt.Sprintf("record %q has stale source range %d-%d in %s",
		rec.FullName, rec.SourceLineRange.From, rec.SourceLineRange.To, rec.SourceFileID)
	return apperrors.New(apperrors.ErrCodeInvalidRange, msg, nil)
}

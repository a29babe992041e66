package filetype

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// EnsurePDF verifies by magic bytes that path holds a real PDF. Extension
// checks are not enough: decks exported from office tools sometimes arrive
// misnamed, and the pipeline would fail much later with a confusing pdfcpu
// error instead.
func EnsurePDF(path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	log.Debug().Str("mime", mtype.String()).Str("file", path).Msg("detected input type")

	if !mtype.Is("application/pdf") {
		return fmt.Errorf("input is %s, not a PDF", mtype.String())
	}
	return nil
}

package s3

import (
	"strings"

	"github.com/h2non/filetype"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

// ContentKind restricts what may be stored under a path
type ContentKind string

const (
	ContentKindImage ContentKind = "image"
	ContentKindPdf   ContentKind = "pdf"
)

const contentTypePdf = "application/pdf"

// DetectContentType sniffs content and checks it against kind. The declared
// type is only used when sniffing finds nothing and it agrees with kind.
func DetectContentType(content []byte, kind ContentKind, declared string) (string, error) {
	if len(content) == 0 {
		return "", ierr.NewError("empty upload").
			WithHint("The uploaded file is empty").
			Mark(ierr.ErrValidation)
	}

	match, err := filetype.Match(content)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Could not read the uploaded file").
			Mark(ierr.ErrValidation)
	}

	mime := match.MIME.Value
	if match == filetype.Unknown {
		mime = strings.ToLower(strings.TrimSpace(declared))
	}

	switch kind {
	case ContentKindImage:
		if strings.HasPrefix(mime, "image/") {
			return mime, nil
		}
	case ContentKindPdf:
		if mime == contentTypePdf {
			return mime, nil
		}
	}

	return "", ierr.NewErrorf("content type %q is not allowed for %s", mime, kind).
		WithHintf("Only %s files are accepted here", kind).
		WithReportableDetails(map[string]any{"content_type": mime, "expected": kind}).
		Mark(ierr.ErrValidation)
}

package services

import (
	"context"
	"io"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
)

// AttachmentSvcFacade is the external attachment collaborator. The ledger core
// never inspects file contents; it only ties an attachment to a document
// reference.
type AttachmentSvcFacade interface {
	Attach(ctx context.Context, ref domain.DocumentRef, filename string, content io.Reader) (string, error)
}

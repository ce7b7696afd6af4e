// filesystem_attachments.go stores document evidence on local disk. The
// ledger core only sees opaque attachment IDs; swapping in object storage
// means replacing this adapter.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	portsvc "github.com/finbooks/backoffice_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

type FilesystemAttachmentStore struct {
	baseDir string
}

var _ portsvc.AttachmentSvcFacade = (*FilesystemAttachmentStore)(nil)

func NewFilesystemAttachmentStore(baseDir string) (*FilesystemAttachmentStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, apperrors.NewAppError(500, "failed to create attachment directory", err)
	}
	return &FilesystemAttachmentStore{baseDir: baseDir}, nil
}

// Attach streams the content to disk under a per-document directory and
// returns the attachment ID. The stored name keeps the original extension so
// downloads stay openable, but never trusts the client-supplied path.
func (s *FilesystemAttachmentStore) Attach(ctx context.Context, ref domain.DocumentRef, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	attachmentID := uuid.NewString()
	ext := filepath.Ext(filepath.Base(filename))

	docDir := filepath.Join(s.baseDir, string(ref.Kind), sanitizeSegment(ref.ID))
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return "", apperrors.NewAppError(500, "failed to create document directory", err)
	}

	path := filepath.Join(docDir, attachmentID+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to create attachment file", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return "", apperrors.NewAppError(500, "failed to write attachment content", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", apperrors.NewAppError(500, "failed to close attachment file", err)
	}

	return attachmentID, nil
}

func sanitizeSegment(s string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, s)
	if replaced == "" {
		return fmt.Sprintf("doc-%s", uuid.NewString())
	}
	return replaced
}

package domain

import "fmt"

// DocumentKind discriminates the kinds of commercial documents that may
// originate a journal entry. An explicit enum keeps origin references typed
// instead of an untyped polymorphic pointer.
type DocumentKind string

const (
	DocumentInvoice DocumentKind = "invoice"
	DocumentManual  DocumentKind = "manual"
	DocumentOpening DocumentKind = "opening"
)

// ValidDocumentKind reports whether k is a known document kind.
func ValidDocumentKind(k DocumentKind) bool {
	switch k {
	case DocumentInvoice, DocumentManual, DocumentOpening:
		return true
	}
	return false
}

// DocumentRef identifies the originating document of a journal entry.
type DocumentRef struct {
	Kind DocumentKind `json:"kind"`
	ID   string       `json:"id"`
}

func (r DocumentRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

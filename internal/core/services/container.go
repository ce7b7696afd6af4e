package services

import (
	"github.com/finbooks/backoffice_ledger/internal/core/ports/repositories"
	"github.com/finbooks/backoffice_ledger/internal/core/ports/services"
)

// ServiceContainer holds all service facades for handler wiring.
type ServiceContainer struct {
	ChartSvc   services.ChartSvcFacade
	LedgerSvc  services.LedgerSvcFacade
	InvoiceSvc services.InvoiceSvcFacade
}

// NewServiceContainer wires the service layer on top of the repository
// provider and the external collaborators.
func NewServiceContainer(repos *repositories.RepositoryProvider, events services.EventSinkSvc, attachments services.AttachmentSvcFacade, mapping PostingMapping) *ServiceContainer {
	chartSvc := NewChartService(repos.AccountRepo)
	ledgerSvc := NewLedgerService(repos.JournalRepo, repos.AccountRepo, events)
	invoiceSvc := NewInvoiceService(repos.InvoiceRepo, ledgerSvc, attachments, mapping)

	return &ServiceContainer{
		ChartSvc:   chartSvc,
		LedgerSvc:  ledgerSvc,
		InvoiceSvc: invoiceSvc,
	}
}

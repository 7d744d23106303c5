package services

import (
	portsrepo "github.com/finledger/finledger_backend/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger_backend/internal/core/ports/services"
)

// NewServiceContainer wires the repositories into the service facades.
func NewServiceContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:     NewAccountService(repos.AccountRepo, repos.CurrencyRepo),
		Transaction: NewTransactionService(repos.TransactionRepo, repos.AccountRepo, repos.CurrencyRepo),
		Currency:    NewCurrencyService(repos.CurrencyRepo),
	}
}

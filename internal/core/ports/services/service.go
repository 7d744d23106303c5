package services

// ServiceContainer bundles all service facades for injection into handlers.
type ServiceContainer struct {
	Account     AccountSvcFacade
	Transaction TransactionSvcFacade
	Currency    CurrencySvcFacade
}

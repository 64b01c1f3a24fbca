package model

// All lists every table in migration order.
func All() []any {
	return []any{
		&LedgerAddress{},
		&Vault{},
		&Report{},
		&Credential{},
		&LedgerEvent{},
		&CustodyAccount{},
		&CustodyTransfer{},
		&LedgerKV{},
	}
}

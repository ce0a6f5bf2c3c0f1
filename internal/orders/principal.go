package orders

// Principal is the authenticated caller identity, resolved by the identity
// collaborator before a request reaches this package. ID is opaque here; for
// customers it matches customers.principal_id. Privileged principals are
// trusted system callers and bypass ownership checks.
type Principal struct {
	ID         string
	Privileged bool
}

func (p Principal) Authenticated() bool { return p.ID != "" }

// CanReadOrder is the row-visibility predicate for orders and everything
// hanging off them (items, lines, totals): owner or privileged.
func CanReadOrder(p Principal, ownerPrincipalID string) bool {
	return p.Privileged || (p.Authenticated() && p.ID == ownerPrincipalID)
}

// CanReadProduct: products are globally readable while active.
func CanReadProduct(p Principal, active bool) bool {
	return active || p.Privileged
}

// CanReadCustomer: a customer record is visible only to its own principal.
func CanReadCustomer(p Principal, principalID string) bool {
	return p.Privileged || (p.Authenticated() && p.ID == principalID)
}

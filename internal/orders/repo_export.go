package orders

import "context"

// OrderLines is the export projection: line items in placement order joined
// with catalog identity fields, subtotals derived from the snapshot price.
// Missing and not-owned orders are indistinguishable to the caller.
func (r *Repo) OrderLines(ctx context.Context, p Principal, orderID string) ([]OrderLine, error) {
	owner, err := r.ownerPrincipal(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanReadOrder(p, owner) {
		return nil, ErrOrderNotFound
	}

	rows, err := r.DB.Query(ctx, `
		SELECT pr.sku, pr.name, i.quantity, i.unit_price_cents
		FROM order_items i JOIN products pr ON pr.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.position
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.SKU, &l.Name, &l.Quantity, &l.UnitPriceCents); err != nil {
			return nil, err
		}
		l.SubtotalCents = l.Quantity * l.UnitPriceCents
		out = append(out, l)
	}
	return out, rows.Err()
}

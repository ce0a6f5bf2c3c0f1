package httpx

import (
	"net/http"

	"github.com/storelab/orderd/internal/orders"
)

// Authentication happens upstream; the gateway hands us a stable identity in
// headers. An empty id means unauthenticated; role "service" marks trusted
// system callers.
const (
	HeaderPrincipalID   = "X-Principal-Id"
	HeaderPrincipalRole = "X-Principal-Role"

	RoleService = "service"
)

func principalFrom(r *http.Request) orders.Principal {
	return orders.Principal{
		ID:         r.Header.Get(HeaderPrincipalID),
		Privileged: r.Header.Get(HeaderPrincipalRole) == RoleService,
	}
}

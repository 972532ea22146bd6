// ABOUTME: Role-keyed claim rules with all-or-nothing validity predicates
// ABOUTME: Partial claim sets are never sent; either the full set or nothing

package payload

// Known roles.
const (
	RoleTms     = "tms"
	RolePublico = "publico"
	RoleAlumno  = "alumno"
	RoleRelator = "relator"
	RoleCliente = "cliente"
)

// claimField names the individual claim fields a rule can require.
type claimField int

const (
	fieldRut claimField = iota
	fieldCustomerID
	fieldEmail
)

// claimRule declares which claim fields a role requires. A rule is
// satisfied only when every required field is non-empty; a partially
// filled set yields no claims object at all.
type claimRule struct {
	required []claimField
}

// claimRules is the strategy table. Roles absent from the table never
// send claims.
var claimRules = map[string]claimRule{
	RoleAlumno:  {required: []claimField{fieldRut}},
	RoleRelator: {required: []claimField{fieldRut}},
	RoleCliente: {required: []claimField{fieldRut, fieldCustomerID, fieldEmail}},
}

func (c Claims) field(f claimField) string {
	switch f {
	case fieldRut:
		return c.Rut
	case fieldCustomerID:
		return c.CustomerID
	case fieldEmail:
		return c.Email
	}
	return ""
}

// satisfied reports whether every required field is non-empty.
func (r claimRule) satisfied(c Claims) bool {
	for _, f := range r.required {
		if c.field(f) == "" {
			return false
		}
	}
	return true
}

// ClaimsComplete reports whether the role's required claim fields are all
// present. Roles without a rule are always complete.
func ClaimsComplete(role string, c Claims) bool {
	rule, ok := claimRules[role]
	if !ok {
		return true
	}
	return rule.satisfied(c)
}

// claimsFor builds the wire claims object for the role, or nil when the
// role sends none or its required set is incomplete. Context objects are
// appended when present, capped at MaxContextObjects.
func claimsFor(rc RoleContext) *WireClaims {
	rule, ok := claimRules[rc.Role]

	var wire *WireClaims
	if ok && rule.satisfied(rc.Claims) {
		wire = &WireClaims{}
		for _, f := range rule.required {
			switch f {
			case fieldRut:
				wire.Rut = rc.Claims.Rut
			case fieldCustomerID:
				wire.CustomerID = rc.Claims.CustomerID
			case fieldEmail:
				wire.Email = rc.Claims.Email
			}
		}
	}

	if len(rc.ContextObjects) > 0 {
		if wire == nil {
			wire = &WireClaims{}
		}
		ctx := rc.ContextObjects
		if len(ctx) > MaxContextObjects {
			ctx = ctx[:MaxContextObjects]
		}
		wire.Context = append([]ContextObject(nil), ctx...)
	}

	return wire
}

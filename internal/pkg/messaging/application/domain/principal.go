package messaging

// Principal is the authenticated caller, resolved by the session layer and
// passed explicitly into every operation. The id is an opaque trusted integer
// supplied by the identity subsystem; no ambient global state.
type Principal struct {
	UserID int64
}

// Valid reports whether the principal carries a usable user id.
func (p Principal) Valid() bool { return p.UserID > 0 }

package calls

// Registration links a support call to the protocol it was opened under.
//
// Insert-only: rows are created once per call and never mutated or deleted here.
// ID is generated by the store (bigserial).
type Registration struct {
	ID       int64  `json:"id" db:"id"`
	Protocol string `json:"protocolo" db:"protocolo"`
	CallID   string `json:"id_chamada" db:"id_chamada"`
}

// RegisterRequest is the decoded POST body.
type RegisterRequest struct {
	Protocol string `json:"protocolo"`
	CallID   string `json:"id_chamada"`
}

package models

// Actor roles known to the pipeline.
const (
	RoleWorker = "worker"
	RoleAdmin  = "admin"
)

// AuthorizedActor is the already-authenticated caller identity handed to the
// pipeline. Authentication itself (token issuance, password checks) lives
// outside this service; handlers only verify a bearer token and extract this.
type AuthorizedActor struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

// IsAdmin reports whether the actor may review submissions and use the
// direct-approve creation path.
func (a AuthorizedActor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

package user

// Role gates boundary operations: organizers create and drive competitions,
// players join teams.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RolePlayer    Role = "player"
)

// Principal is the verified identity attached to a request.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

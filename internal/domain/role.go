package domain

// Role selects which controls the UI renders. It is not an access control
// boundary.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleStoreKeeper Role = "storekeeper"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleStoreKeeper }

func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleStoreKeeper:
		return "Store Keeper"
	default:
		return string(r)
	}
}

// Session is the role a browser picked on the login screen.
type Session struct {
	ID   string `db:"id"`
	Role Role   `db:"role"`
	Name string `db:"name"`
}

func (s *Session) IsAdmin() bool { return s != nil && s.Role == RoleAdmin }

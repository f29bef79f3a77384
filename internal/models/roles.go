package models

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// Role describes one of the account roles known to the site.
type Role struct {
	Name        string `json:"role"`
	Description string `json:"description"`
}

// Roles lists the roles in descending privilege order.
var Roles = []Role{
	{Name: RoleAdmin, Description: "Full access including user management"},
	{Name: RoleEditor, Description: "Content editing and publishing"},
	{Name: RoleUser, Description: "Signed-in visitor"},
}

// ValidRole reports whether name is a known role.
func ValidRole(name string) bool {
	for _, r := range Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

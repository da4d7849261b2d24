package auth

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

var Roles = []string{RoleAdmin, RoleHR, RoleManager, RoleEmployee}

func ValidRole(role string) bool {
	for _, candidate := range Roles {
		if role == candidate {
			return true
		}
	}
	return false
}

// RoleAreas maps each role to the console areas it may enter. Admin covers
// every area; everyone else is confined to their own.
var RoleAreas = map[string][]string{
	RoleAdmin:    {"admin", "hr", "manager", "employee"},
	RoleHR:       {"hr"},
	RoleManager:  {"manager"},
	RoleEmployee: {"employee"},
}

func CanEnterArea(role, area string) bool {
	for _, allowed := range RoleAreas[role] {
		if allowed == area {
			return true
		}
	}
	return false
}

// HomePath is where a signed-in actor lands after login, and where the
// guard sends them when they wander into a foreign area.
func HomePath(role string) string {
	switch role {
	case RoleAdmin, RoleHR, RoleManager:
		return "/" + role + "/dashboard"
	default:
		return "/employee/dashboard"
	}
}

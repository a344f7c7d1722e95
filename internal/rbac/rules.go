package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"session:create",
		"session:view",
		"session:answer",
		"session:navigate",
		"session:finish",
		"results:view",
		"review:view",
	},
	"proctor": {
		"session:view",
		"results:view",
		"audit:view",
	},
	"admin": {
		"*", // everything
	},
}

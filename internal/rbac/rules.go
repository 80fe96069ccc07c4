package rbac

// Default policy. Students drive their own progression; admins are the
// mentor role and additionally review homework and manage learners.
var RolePermissions = map[string][]string{
	"student": {
		"course:view",
		"topic:view",
		"progress:view-own",
		"progress:advance",
		"quiz:submit",
		"exercise:submit",
		"homework:submit",
		"resource:view",
		"user:change_password",
	},
	"admin": {
		"*", // everything, including homework:review and users:*
	},
}

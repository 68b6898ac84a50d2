package auth

// creationRules states which roles an actor may provision. It is a flat rule
// table rather than a hierarchy walk so the full matrix can be tested
// exhaustively.
var creationRules = map[Role]map[Role]bool{
	RoleSuperAdmin: {
		RoleSuperAdmin: true,
		RoleAdmin:      true,
		RoleUser:       true,
	},
	RoleAdmin: {
		RoleUser: true,
	},
	RoleUser: {},
}

// CanCreate reports whether an actor with the given role may create an
// account with the target role. Unknown roles are never allowed.
func CanCreate(actor, target Role) bool {
	return creationRules[actor][target]
}

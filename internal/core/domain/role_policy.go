package domain

// RoleChanges is the mutation set computed by the role policy: roles to
// grant and roles to revoke against the current assignment set.
type RoleChanges struct {
	Grant  []Role
	Revoke []Role
}

// Empty reports whether the policy decided no mutation is needed.
func (c RoleChanges) Empty() bool {
	return len(c.Grant) == 0 && len(c.Revoke) == 0
}

// UpgradeToPaid computes the role mutations for a paid-status-granted signal.
// The free tier is superseded by the paid tier (mutual exclusivity); the
// admin tier is never touched. The policy never downgrades: no signal path
// removes the paid tier.
func UpgradeToPaid(current []Role) RoleChanges {
	var ch RoleChanges
	hasPaid := false
	for _, r := range current {
		switch r {
		case RoleFree:
			ch.Revoke = append(ch.Revoke, RoleFree)
		case RolePaid:
			hasPaid = true
		case RoleAdmin:
			// unaffected by payment status
		}
	}
	if !hasPaid {
		ch.Grant = append(ch.Grant, RolePaid)
	}
	return ch
}

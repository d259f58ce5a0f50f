package domain

// ProfileChanges is a sparse update proposal against a directory account.
// Zero values mean "field not supplied": an empty Password means no new
// password, a CalorieTarget <= 0 is treated exactly like an absent field,
// and an empty Role requests no role change.
type ProfileChanges struct {
	UserName      string
	Password      string // new plaintext password
	Name          string
	CalorieTarget int
	Role          Role
}

// UpdatePlan is the set of mutations the policy engine permits. Zero
// values mean "keep the current value". Password is still plaintext here;
// hashing happens in the service layer before persisting.
type UpdatePlan struct {
	Password      string
	Name          string
	CalorieTarget int
	Role          Role
}

// Relation classifies the target account relative to the acting principal.
type Relation int

const (
	// RelSelf: the actor is editing its own account.
	RelSelf Relation = iota
	// RelManaged: the target holds the plain user role (and is not the actor).
	RelManaged
	// RelOther: any other account (manager or admin, not the actor).
	RelOther
)

// RelationOf computes the actor/target relation once per decision so every
// field rule consumes the same self check.
func RelationOf(actor Principal, target User) Relation {
	switch {
	case actor.UserName == target.UserName:
		return RelSelf
	case target.Role == RoleUser:
		return RelManaged
	default:
		return RelOther
	}
}

// profileGrants declares who may edit the profile fields (password, name,
// calorie target) of whom. A missing cell means deny.
var profileGrants = map[Role]map[Relation]bool{
	RoleUser:    {RelSelf: true},
	RoleManager: {RelSelf: true, RelManaged: true},
	RoleAdmin:   {RelSelf: true, RelManaged: true, RelOther: true},
}

// roleTransition is a requested role change on a target account.
type roleTransition struct {
	From Role
	To   Role
}

// managerRoleGrants lists the only role change a manager may perform:
// promoting a plain user to manager. Everything else is denied.
var managerRoleGrants = map[roleTransition]bool{
	{From: RoleUser, To: RoleManager}: true,
}

// DecideUpdate is the access policy engine. Given the acting principal,
// the target account's current state, and a sparse change proposal, it
// returns the mutations to apply or rejects the whole request.
//
// Failure modes:
//   - ErrNothingToUpdate: no recognized field was supplied.
//   - ErrForbidden: a supplied field would change the target but the
//     actor lacks the right; the first violating field rejects the whole
//     proposal, nothing is partially applied.
//
// The decision is a pure function of its inputs and performs no I/O.
func DecideUpdate(actor Principal, target User, changes ProfileChanges) (*UpdatePlan, error) {
	if !actor.Role.Valid() {
		return nil, ErrForbidden
	}

	rel := RelationOf(actor, target)
	canEditProfile := profileGrants[actor.Role][rel]

	wantsPassword := changes.Password != ""
	wantsName := changes.Name != ""
	wantsCalorie := changes.CalorieTarget > 0
	// Plain users cannot touch the role field; it is ignored outright
	// rather than rejected, so a user sending role alongside a name
	// change still gets the name change. Echoing the target's current
	// role requests nothing.
	wantsRole := actor.Role != RoleUser && changes.Role != "" && changes.Role != target.Role

	if !wantsPassword && !wantsName && !wantsCalorie && !wantsRole {
		return nil, ErrNothingToUpdate
	}

	plan := &UpdatePlan{}

	if wantsPassword {
		if !canEditProfile {
			return nil, ErrForbidden
		}
		plan.Password = changes.Password
	}

	if wantsCalorie && changes.CalorieTarget != target.CalorieTarget {
		if !canEditProfile {
			return nil, ErrForbidden
		}
		plan.CalorieTarget = changes.CalorieTarget
	}

	if wantsName && changes.Name != target.Name {
		if !canEditProfile {
			return nil, ErrForbidden
		}
		plan.Name = changes.Name
	}

	if wantsRole {
		newRole, err := decideRoleChange(actor.Role, rel, target.Role, changes.Role)
		if err != nil {
			return nil, err
		}
		plan.Role = newRole
	}

	return plan, nil
}

// decideRoleChange evaluates a requested role transition. Managers are
// limited to the promotion table; admins may assign any valid role to
// anyone but themselves (no self-demotion or self-lockout).
func decideRoleChange(actorRole Role, rel Relation, from, to Role) (Role, error) {
	switch actorRole {
	case RoleManager:
		if managerRoleGrants[roleTransition{From: from, To: to}] {
			return to, nil
		}
	case RoleAdmin:
		if rel != RelSelf && to.Valid() {
			return to, nil
		}
	}
	return "", ErrForbidden
}

// CanDelete reports whether the acting principal may remove the target
// account: managers may delete plain users, admins may delete anyone but
// themselves.
func CanDelete(actor Principal, target User) bool {
	rel := RelationOf(actor, target)
	switch actor.Role {
	case RoleManager:
		return rel == RelManaged
	case RoleAdmin:
		return rel != RelSelf
	}
	return false
}

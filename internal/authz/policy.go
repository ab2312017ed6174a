// Package authz holds the access policy as a single ordered rule table.
// Decisions are pure: identity in, verdict out, no store access.
package authz

import "github.com/modulehub/modulehub/internal/models"

type Kind int

const (
	KindModule Kind = iota
	KindAccount
)

type Action int

const (
	ActionCreate Action = iota
	ActionRead
	ActionList
	ActionUpdate
	ActionDelete
)

type Decision int

const (
	Allow Decision = iota
	Unauthorized
	Forbidden
	NotFound
)

// Resource identifies the target of an action. OwnerID is only
// meaningful for modules and may be zero when the target has not been
// loaded yet; in that case the ownership rule is enforced by the
// owner-scoped store lookup instead.
type Resource struct {
	Kind    Kind
	OwnerID int64
}

// Decide evaluates the rule table in order; the first matching rule wins.
//
//  1. Module create: any authenticated actor (owner bound to the actor
//     downstream, client-supplied owners are ignored).
//  2. Module list: anyone. Module read: any authenticated actor.
//  3. Module update/delete: owner only. A non-owner gets NotFound, not
//     Forbidden, so the existence of other users' modules never leaks.
//  4. Account create: anyone (open registration).
//  5. Account read/list/update/delete: staff only.
func Decide(actor *models.Identity, res Resource, action Action) Decision {
	switch res.Kind {
	case KindModule:
		switch action {
		case ActionCreate:
			if actor == nil {
				return Unauthorized
			}
			return Allow
		case ActionList:
			return Allow
		case ActionRead:
			if actor == nil {
				return Unauthorized
			}
			return Allow
		case ActionUpdate, ActionDelete:
			if actor == nil {
				return Unauthorized
			}
			if actor.AccountID == res.OwnerID {
				return Allow
			}
			return NotFound
		}
	case KindAccount:
		if action == ActionCreate {
			return Allow
		}
		if actor == nil {
			return Unauthorized
		}
		if actor.IsStaff {
			return Allow
		}
		return Forbidden
	}
	return Unauthorized
}

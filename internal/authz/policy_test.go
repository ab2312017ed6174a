package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modulehub/modulehub/internal/models"
)

func TestDecide_ModuleRules(t *testing.T) {
	owner := &models.Identity{AccountID: 1}
	other := &models.Identity{AccountID: 2}

	tests := []struct {
		name   string
		actor  *models.Identity
		res    Resource
		action Action
		want   Decision
	}{
		{"create requires authentication", nil, Resource{Kind: KindModule}, ActionCreate, Unauthorized},
		{"create allowed for any authenticated actor", other, Resource{Kind: KindModule}, ActionCreate, Allow},
		{"list open to anonymous", nil, Resource{Kind: KindModule}, ActionList, Allow},
		{"list open to authenticated", owner, Resource{Kind: KindModule}, ActionList, Allow},
		{"read requires authentication", nil, Resource{Kind: KindModule}, ActionRead, Unauthorized},
		{"read allowed regardless of owner", other, Resource{Kind: KindModule, OwnerID: 1}, ActionRead, Allow},
		{"update by owner", owner, Resource{Kind: KindModule, OwnerID: 1}, ActionUpdate, Allow},
		{"update by non-owner hidden as not found", other, Resource{Kind: KindModule, OwnerID: 1}, ActionUpdate, NotFound},
		{"update anonymous", nil, Resource{Kind: KindModule, OwnerID: 1}, ActionUpdate, Unauthorized},
		{"delete by owner", owner, Resource{Kind: KindModule, OwnerID: 1}, ActionDelete, Allow},
		{"delete by non-owner hidden as not found", other, Resource{Kind: KindModule, OwnerID: 1}, ActionDelete, NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.actor, tt.res, tt.action))
		})
	}
}

func TestDecide_AccountRules(t *testing.T) {
	staff := &models.Identity{AccountID: 1, IsStaff: true}
	regular := &models.Identity{AccountID: 2}

	tests := []struct {
		name   string
		actor  *models.Identity
		action Action
		want   Decision
	}{
		{"registration open to anonymous", nil, ActionCreate, Allow},
		{"registration open to authenticated", regular, ActionCreate, Allow},
		{"list anonymous", nil, ActionList, Unauthorized},
		{"list non-staff forbidden", regular, ActionList, Forbidden},
		{"list staff", staff, ActionList, Allow},
		{"read non-staff forbidden", regular, ActionRead, Forbidden},
		{"read staff", staff, ActionRead, Allow},
		{"update non-staff forbidden", regular, ActionUpdate, Forbidden},
		{"update staff", staff, ActionUpdate, Allow},
		{"delete non-staff forbidden", regular, ActionDelete, Forbidden},
		{"delete staff", staff, ActionDelete, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.actor, Resource{Kind: KindAccount}, tt.action))
		})
	}
}

// Non-owner rejections must never be Forbidden: a 403 would reveal the
// module exists.
func TestDecide_NonOwnerNeverForbidden(t *testing.T) {
	other := &models.Identity{AccountID: 42}
	for _, action := range []Action{ActionUpdate, ActionDelete} {
		decision := Decide(other, Resource{Kind: KindModule, OwnerID: 7}, action)
		assert.Equal(t, NotFound, decision)
		assert.NotEqual(t, Forbidden, decision)
	}
}

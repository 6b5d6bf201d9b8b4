package visibility

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"fieldops/internal/types"
)

func sample() []types.Activity {
	return []types.Activity{
		{ID: "a1", PromoterID: "p1", Objective: "Census"},
		{ID: "a2", PromoterID: "p2", Objective: "Visit"},
		{ID: "a3", PromoterID: "p1", Objective: "Workshop"},
		{ID: "a4", PromoterID: "p3", Objective: "Survey"},
	}
}

func TestAdminSeesAll(t *testing.T) {
	in := sample()
	out := Visible(in, types.RoleAdmin, "admin", types.AdminScopeAll)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("admin ALL scope must return full set in order (-want +got):\n%s", diff)
	}
}

func TestAdminScopedToOnePromoter(t *testing.T) {
	out := Visible(sample(), types.RoleAdmin, "admin", "p1")
	assert.Len(t, out, 2)
	for _, a := range out {
		assert.Equal(t, "p1", a.PromoterID)
	}
}

func TestFieldPromoterSeesOnlyOwn(t *testing.T) {
	overrides := []string{"", types.AdminScopeAll, "p1", "p3"}
	for _, override := range overrides {
		t.Run("override="+override, func(t *testing.T) {
			out := Visible(sample(), types.RoleFieldPromoter, "p2", override)
			assert.Len(t, out, 1)
			for _, a := range out {
				assert.Equal(t, "p2", a.PromoterID,
					"field promoter must never see another owner's activity")
			}
		})
	}
}

func TestUnknownRoleTreatedAsFieldPromoter(t *testing.T) {
	out := Visible(sample(), types.Role("SUPERUSER"), "p1", types.AdminScopeAll)
	assert.Len(t, out, 2)
}

func TestPureFunction(t *testing.T) {
	in := sample()
	first := Visible(in, types.RoleAdmin, "admin", "p1")
	second := Visible(in, types.RoleAdmin, "admin", "p1")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("not referentially transparent (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(sample(), in); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

package confusion

import (
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

// Names and pronouns stand in for each other through coreference; nominal
// and verbal forms of the same event occasionally swap.
var defaultTypes = []TypeEntry{
	{predicate.Name, predicate.Desc, 0.5},
	{predicate.Name, predicate.Pron, 0.6},
	{predicate.Desc, predicate.Name, 0.5},
	{predicate.Desc, predicate.Pron, 0.5},
	{predicate.Pron, predicate.Name, 0.6},
	{predicate.Pron, predicate.Desc, 0.5},
	{predicate.Verb, predicate.Desc, 0.3},
	{predicate.Verb, predicate.Mod, 0.3},
	{predicate.Desc, predicate.Verb, 0.3},
	{predicate.Desc, predicate.Mod, 0.4},
	{predicate.Mod, predicate.Desc, 0.4},
	{predicate.Mod, predicate.Verb, 0.3},
	{predicate.Adv, predicate.Mod, 0.5},
	{predicate.Mod, predicate.Adv, 0.5},
	{predicate.Particle, predicate.Adv, 0.3},
}

var defaultRoles = []RoleEntry{
	{theory.RoleSub, theory.RoleObj, 0.2},
	{theory.RoleObj, theory.RoleSub, 0.2},
	{theory.RoleObj, theory.RoleIObj, 0.5},
	{theory.RoleIObj, theory.RoleObj, 0.5},
	{theory.RoleSub, theory.RolePoss, 0.3},
	{theory.RolePoss, theory.RoleSub, 0.3},
	{theory.RoleLoc, theory.RoleTemp, 0.1},
	{theory.RoleUnknown, theory.RoleMod, 0.8},
	{theory.RoleMod, theory.RoleUnknown, 0.8},
	{theory.RoleMod, theory.RolePoss, 0.5},
	{theory.RolePoss, theory.RoleMod, 0.5},
	{"in", "at", 0.6},
	{"at", "in", 0.6},
	{"on", "at", 0.4},
	{"at", "on", 0.4},
	{"by", theory.RoleSub, 0.7},
	{theory.RoleSub, "by", 0.7},
}

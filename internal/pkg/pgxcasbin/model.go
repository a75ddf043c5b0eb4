package pgxcasbin

import (
	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

// RBACModel grants p rules to subjects directly or through g roles. "*"
// matches any object or action.
const RBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// NewEnforcer loads RBACModel with policies from a and, when w is non-nil,
// keeps them in sync across instances.
func NewEnforcer(a *Adapter, w *Watcher) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(RBACModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m, a)
	if err != nil {
		return nil, err
	}

	if w != nil {
		if err := e.SetWatcher(w); err != nil {
			return nil, err
		}
		if err := w.SetUpdateCallback(ReloadCallback(e)); err != nil {
			return nil, err
		}
		e.EnableAutoNotifyWatcher(true)
	}
	e.EnableAutoSave(true)
	return e, nil
}

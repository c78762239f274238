package slumber

import "fmt"

// ToHost converts a value graph into plain Go values: nil, bool,
// float64, string, []any and map[string]any. Lists and Modules are
// converted recursively; any other object becomes its __repr text.
func ToHost(obj *Object) (any, error) {
	return toHost(obj, make(map[*Object]bool))
}

func toHost(obj *Object, active map[*Object]bool) (any, error) {
	if obj == nil {
		return nil, nil
	}
	rt := obj.runtime()
	if rt == nil {
		return nil, fmt.Errorf("object %d has no runtime", obj.ID())
	}
	switch {
	case obj == rt.Nil:
		return nil, nil
	case obj == rt.True:
		return true, nil
	case obj == rt.False:
		return false, nil
	}
	switch dat := obj.Dat.(type) {
	case float64:
		if obj.IsA(rt.NumberClass) {
			return dat, nil
		}
	case string:
		if obj.IsA(rt.StringClass) {
			return dat, nil
		}
	case *ListData:
		if active[obj] {
			return nil, fmt.Errorf("cannot export self-referencing list")
		}
		active[obj] = true
		defer delete(active, obj)
		out := make([]any, 0, len(dat.Items))
		for _, item := range dat.Items {
			v, err := toHost(item, active)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case *moduleInfo:
		return ModuleBindings(obj)
	}
	return obj.Repr()
}

// ModuleBindings exports a Module's bindings, skipping names that
// start with an underscore.
func ModuleBindings(module *Object) (map[string]any, error) {
	names := module.AttrNames()
	out := make(map[string]any, len(names))
	for _, name := range names {
		if len(name) > 0 && name[0] == '_' {
			continue
		}
		val, err := module.GetAttr(name)
		if err != nil {
			return nil, err
		}
		v, err := ToHost(val)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

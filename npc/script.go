package npc

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/tilewalk/prefabs"
	"go.uber.org/zap"
)

// Scripts define `update := func(engine, state) {...}`; the dispatch below is
// appended so one compiled program serves every phase.
const dispatchScript = `
if __phase == "update" {
	update(__engine, __state)
}
`

type scriptRuntime struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

func compileScript(name string) (*scriptRuntime, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("npc: load script %s: %w", name, err)
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + dispatchScript))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("npc: compile script %s: %w", name, err)
	}

	rt := &scriptRuntime{
		name:     name,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}

	// a load pass defines the script's globals without calling update
	if err := rt.run("load", nil); err != nil {
		return nil, fmt.Errorf("npc: run script %s: %w", name, err)
	}
	if !compiled.IsDefined("update") {
		return nil, fmt.Errorf("npc: script %s defines no update", name)
	}
	return rt, nil
}

func (rt *scriptRuntime) run(phase string, engine *tengo.ImmutableMap) error {
	if engine == nil {
		engine = &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return err
	}
	return rt.compiled.Run()
}

// buildEngine exposes one actor to its script for one tick.
func (r *Roster) buildEngine(a *actor, dt float64) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["id"] = &tengo.String{Value: a.npc.ID}
	values["dt"] = &tengo.Float{Value: dt}

	values["walking"] = &tengo.UserFunction{Name: "walking", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(len(a.path) > 0), nil
	}}

	values["home"] = &tengo.UserFunction{Name: "home", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Array{Value: []tengo.Object{&tengo.Int{Value: int64(a.home.X)}, &tengo.Int{Value: int64(a.home.Y)}}}, nil
	}}

	values["tile"] = &tengo.UserFunction{Name: "tile", Value: func(args ...tengo.Object) (tengo.Object, error) {
		t := a.npc.Position.Tile()
		return &tengo.Array{Value: []tengo.Object{&tengo.Int{Value: int64(t.X)}, &tengo.Int{Value: int64(t.Y)}}}, nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: a.npc.Position.X}, &tengo.Float{Value: a.npc.Position.Y}}}, nil
	}}

	values["param"] = &tengo.UserFunction{Name: "param", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		name := objectAsString(args[0])
		if v, ok := a.params[name]; ok {
			if obj, err := tengo.FromInterface(v); err == nil {
				return obj, nil
			}
		}
		if len(args) > 1 {
			return args[1], nil
		}
		return tengo.UndefinedValue, nil
	}}

	values["walk_to"] = &tengo.UserFunction{Name: "walk_to", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		x, okX := tengo.ToInt(args[0])
		y, okY := tengo.ToInt(args[1])
		if !okX || !okY {
			return tengo.FalseValue, nil
		}
		return boolObject(r.walkTo(a, x, y)), nil
	}}

	values["stop"] = &tengo.UserFunction{Name: "stop", Value: func(args ...tengo.Object) (tengo.Object, error) {
		a.path = nil
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, objectAsString(arg))
		}
		r.logger.Debug(strings.Join(parts, " "), zap.String("npc", a.npc.ID))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

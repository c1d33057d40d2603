package typecontext

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mambac/mambac/constraint"
)

//go:embed stdlib/*.yaml
var stdlibFS embed.FS

// stdlibClass is the YAML shape of one bundled Python-augmented standard
// library class descriptor (the program plus a Python-augmented
// standard library").
type stdlibClass struct {
	Name    string              `yaml:"name"`
	PyName  string              `yaml:"py_name"`
	Parents []string            `yaml:"parents"`
	Fields  []stdlibField       `yaml:"fields"`
	Funcs   []stdlibFunc        `yaml:"functions"`
}

type stdlibField struct {
	Name    string `yaml:"name"`
	Ty      string `yaml:"type"`
	Mutable bool   `yaml:"mutable"`
}

type stdlibFunc struct {
	Name   string        `yaml:"name"`
	Args   []stdlibArg   `yaml:"args"`
	Ret    string        `yaml:"ret"`
	Raises []string      `yaml:"raises"`
	Pure   bool          `yaml:"pure"`
}

type stdlibArg struct {
	Name       string `yaml:"name"`
	Ty         string `yaml:"type"`
	HasDefault bool   `yaml:"has_default"`
	Vararg     bool   `yaml:"vararg"`
}

// LoadStdlib reads the bundled descriptor YAML files and returns a Context
// seeded with primitives plus every stdlib class, ready to be passed as the
// `base` argument to Build. Descriptors are treated as already-concrete:
// the bundled library doesn't use generics, so no concretization pass is
// needed for it.
func LoadStdlib() (*Context, error) {
	c := New()

	entries, err := stdlibFS.ReadDir("stdlib")
	if err != nil {
		return nil, fmt.Errorf("typecontext: reading bundled stdlib: %w", err)
	}
	var descriptors []stdlibClass
	for _, e := range entries {
		data, err := stdlibFS.ReadFile("stdlib/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("typecontext: reading %s: %w", e.Name(), err)
		}
		var batch struct {
			Classes []stdlibClass `yaml:"classes"`
		}
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("typecontext: parsing %s: %w", e.Name(), err)
		}
		descriptors = append(descriptors, batch.Classes...)
	}

	byName := make(map[string]stdlibClass, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name] = d
		if d.PyName != "" {
			PyNames[d.Name] = d.PyName
		}
	}

	var build func(name string) *Class
	build = func(name string) *Class {
		if cls, ok := c.classes[name]; ok {
			// A pre-seeded primitive that has a descriptor of its own (Int,
			// Float, Complex) is rebuilt once from that descriptor.
			if _, described := byName[name]; !described || len(cls.layers) > 0 {
				return cls
			}
		}
		d, ok := byName[name]
		if !ok {
			return nil
		}
		cls := &Class{Name: constraint.Single(d.Name), Concrete: true, IsPyType: true}
		var fields []Field
		for _, f := range d.Fields {
			ty := constraint.Single(f.Ty)
			fields = append(fields, Field{Name: f.Name, Ty: &ty, Mutable: f.Mutable, InClass: d.Name})
		}
		var funcs []Function
		for _, fn := range d.Funcs {
			funcs = append(funcs, stdlibFunction(fn, d.Name))
		}
		cls.PushLayer(fields, funcs)
		for _, p := range d.Parents {
			cls.Parents = append(cls.Parents, constraint.Single(p))
			parent := build(p)
			if parent != nil {
				for _, l := range parent.layers {
					cls.PushLayer(l.fields, l.functions)
				}
			}
		}
		c.classes[name] = cls
		return cls
	}
	for name := range byName {
		build(name)
	}
	return c, nil
}

func stdlibFunction(fn stdlibFunc, inClass string) Function {
	f := Function{Name: constraint.Single(fn.Name), Pure: fn.Pure, InClass: inClass}
	if fn.Ret != "" {
		ret := constraint.Single(fn.Ret)
		f.Ret = &ret
	}
	for _, r := range fn.Raises {
		f.Raises = append(f.Raises, constraint.Single(r))
	}
	for _, a := range fn.Args {
		arg := FunctionArg{Name: a.Name, HasDefault: a.HasDefault, Vararg: a.Vararg}
		if a.Ty != "" {
			ty := constraint.Single(a.Ty)
			arg.Ty = &ty
		}
		f.Args = append(f.Args, arg)
	}
	return f
}

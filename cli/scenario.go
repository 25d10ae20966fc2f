package main

import (
	"fmt"
	"os"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/hxkhan/scenepool/ds"
	"gopkg.in/yaml.v3"
)

// Template kinds a scenario can declare.
const (
	kindObject    = "object"
	kindComponent = "component"
	kindData      = "data"
)

// Step operations.
const (
	opAcquire      = "acquire"
	opRelease      = "release"
	opReleaseAll   = "release_all"
	opReleaseWhere = "release_where"
	opSingleton    = "singleton"
	opDestroy      = "destroy"
)

// scenario is the YAML document driving a run.
type scenario struct {
	Objects    []*objectConf `yaml:"objects"`
	Pools      []*poolConf   `yaml:"pools"`
	Singletons []string      `yaml:"singletons"`
	Steps      []*step       `yaml:"steps"`
}

type objectConf struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Parent string `yaml:"parent"`
}

type poolConf struct {
	Name     string `yaml:"name"`
	Template string `yaml:"template"`
}

type step struct {
	Op     string `yaml:"op"`
	Pool   string `yaml:"pool"`
	Parent string `yaml:"parent"`
	As     string `yaml:"as"`
	Ref    string `yaml:"ref"`
	Prefix string `yaml:"prefix"`
	Name   string `yaml:"name"`
	AtEnd  *bool  `yaml:"at_end"`
}

// atEnd defaults to true.
func (s *step) atEnd() bool {
	return s.AtEnd == nil || *s.AtEnd
}

// loadScenario reads and validates the scenario at path.
func loadScenario(path string) (sc *scenario, err error) {
	defer func() { err = errors.Annotate(err, "scenario %q: %w", path) }()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseScenario(b)
}

func parseScenario(b []byte) (sc *scenario, err error) {
	sc = &scenario{}
	err = yaml.Unmarshal(b, sc)
	if err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}

	err = sc.validate()
	if err != nil {
		return nil, err
	}

	return sc, nil
}

// validate checks the references between objects, pools, singletons and
// steps.
func (sc *scenario) validate() (err error) {
	var errs []error

	kinds := map[string]string{}
	for i, o := range sc.Objects {
		_, dup := kinds[o.Name]
		switch {
		case o.Name == "":
			errs = append(errs, fmt.Errorf("objects: at index %d: empty name", i))
		case dup:
			errs = append(errs, fmt.Errorf("objects: at index %d: duplicate name %q", i, o.Name))
		}

		switch o.Kind {
		case kindObject, kindComponent, kindData:
		default:
			errs = append(errs, fmt.Errorf("objects: %q: bad kind %q", o.Name, o.Kind))
		}

		switch k, ok := kinds[o.Parent]; {
		case o.Parent == "":
		case !ok:
			errs = append(errs, fmt.Errorf("objects: %q: unknown parent %q", o.Name, o.Parent))
		case k == kindData:
			errs = append(errs, fmt.Errorf("objects: %q: parent %q is not a scene object", o.Name, o.Parent))
		}

		if !dup {
			kinds[o.Name] = o.Kind
		}
	}

	pools := ds.Set[string]{}
	for i, p := range sc.Pools {
		if p.Name == "" || pools.Has(p.Name) {
			errs = append(errs, fmt.Errorf("pools: at index %d: empty or duplicate name %q", i, p.Name))
		}

		if _, ok := kinds[p.Template]; !ok {
			errs = append(errs, fmt.Errorf("pools: %q: unknown template %q", p.Name, p.Template))
		}

		pools.Add(p.Name)
	}

	singletons := ds.Set[string]{}
	for i, name := range sc.Singletons {
		switch {
		case singletons.Has(name):
			errs = append(errs, fmt.Errorf("singletons: at index %d: duplicate name %q", i, name))
		case singletonGetters[name] == nil:
			errs = append(errs, fmt.Errorf("singletons: at index %d: unknown singleton %q", i, name))
		}

		singletons.Add(name)
	}

	for i, s := range sc.Steps {
		err = s.validate(pools, singletons)
		if err != nil {
			errs = append(errs, fmt.Errorf("steps: at index %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

func (s *step) validate(pools, singletons ds.Set[string]) (err error) {
	switch s.Op {
	case opAcquire, opRelease, opReleaseAll, opReleaseWhere:
		if !pools.Has(s.Pool) {
			return fmt.Errorf("%s: unknown pool %q", s.Op, s.Pool)
		}
	case opSingleton:
		if !singletons.Has(s.Name) {
			return fmt.Errorf("%s: undeclared singleton %q", s.Op, s.Name)
		}
	case opDestroy:
		return s.validateDestroy(pools)
	default:
		return fmt.Errorf("bad op %q", s.Op)
	}

	switch {
	case s.Op == opAcquire && s.As == "":
		return errors.Error("acquire: empty alias")
	case s.Op == opRelease && s.Ref == "":
		return errors.Error("release: empty ref")
	case s.Op == opReleaseWhere && s.Prefix == "":
		return errors.Error("release_where: empty prefix")
	}

	return nil
}

// validateDestroy checks that a destroy step names either a scene object or
// a pooled element.  The pool of a ref is optional.
func (s *step) validateDestroy(pools ds.Set[string]) (err error) {
	switch {
	case s.Name == "" && s.Ref == "":
		return errors.Error("destroy: empty name and ref")
	case s.Name != "" && s.Ref != "":
		return errors.Error("destroy: both name and ref")
	case s.Pool != "" && s.Ref == "":
		return errors.Error("destroy: pool without ref")
	case s.Pool != "" && !pools.Has(s.Pool):
		return fmt.Errorf("destroy: unknown pool %q", s.Pool)
	default:
		return nil
	}
}

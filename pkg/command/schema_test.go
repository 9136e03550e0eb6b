package command

import "testing"

func TestRegistryInvariants(t *testing.T) {
	for _, s := range Schemas() {
		t.Run(s.Name, func(t *testing.T) {
			if s.Name == "" {
				t.Error("schema without name")
			}
			if s.Category == "" {
				t.Error("schema without category")
			}
			seen := make(map[string]bool)
			for _, p := range s.Params {
				if p.Name == "" {
					t.Error("param without name")
				}
				if seen[p.Name] {
					t.Errorf("duplicate param %q", p.Name)
				}
				seen[p.Name] = true

				spec := p.Spec
				if spec.Min != nil && spec.Max != nil && *spec.Min > *spec.Max {
					t.Errorf("param %q: min %v > max %v", p.Name, *spec.Min, *spec.Max)
				}
				if spec.Default != nil {
					if spec.Required {
						t.Errorf("param %q: required param with default", p.Name)
					}
					checkDefault(t, p)
				}
			}
		})
	}
}

func checkDefault(t *testing.T, p Param) {
	t.Helper()
	spec := p.Spec
	switch spec.Type {
	case Integer:
		n, ok := spec.Default.(int)
		if !ok {
			t.Errorf("param %q: integer default is %T", p.Name, spec.Default)
			return
		}
		f := float64(n)
		if (spec.Min != nil && f < *spec.Min) || (spec.Max != nil && f > *spec.Max) {
			t.Errorf("param %q: default %d outside range", p.Name, n)
		}
	case Float:
		f, ok := spec.Default.(float64)
		if !ok {
			t.Errorf("param %q: float default is %T", p.Name, spec.Default)
			return
		}
		if (spec.Min != nil && f < *spec.Min) || (spec.Max != nil && f > *spec.Max) {
			t.Errorf("param %q: default %v outside range", p.Name, f)
		}
	case String:
		if _, ok := spec.Default.(string); !ok {
			t.Errorf("param %q: string default is %T", p.Name, spec.Default)
		}
	case Boolean:
		if _, ok := spec.Default.(bool); !ok {
			t.Errorf("param %q: boolean default is %T", p.Name, spec.Default)
		}
	}
}

func TestLookup(t *testing.T) {
	s, ok := Lookup(CmdJointDeg)
	if !ok {
		t.Fatal("Lookup(CmdJointDeg) not found")
	}
	if s.Type != 121 {
		t.Errorf("Type = %d, want 121", s.Type)
	}
	if s.Category != CategoryMovement {
		t.Errorf("Category = %s, want movement", s.Category)
	}
	if len(s.Params) != 3 {
		t.Errorf("Params = %d, want 3 (joint, angle, spd)", len(s.Params))
	}

	if _, ok := Lookup(9999); ok {
		t.Error("Lookup(9999) should not find a schema")
	}
}

func TestCategories(t *testing.T) {
	tests := []struct {
		code int
		want Category
	}{
		{CmdHome, CategoryMovement},
		{CmdPosition, CategoryMovement},
		{CmdJointsRad, CategoryMovement},
		{CmdFeedback, CategorySystem},
		{CmdTorque, CategorySystem},
		{CmdLED, CategoryLED},
		{CmdMissionPlay, CategoryMission},
		{CmdGripper, CategoryGripper},
	}

	for _, tt := range tests {
		s, ok := Lookup(tt.code)
		if !ok {
			t.Errorf("Lookup(%d) not found", tt.code)
			continue
		}
		if s.Category != tt.want {
			t.Errorf("T%d category = %s, want %s", tt.code, s.Category, tt.want)
		}
	}
}

func TestSchemasSorted(t *testing.T) {
	all := Schemas()
	if len(all) == 0 {
		t.Fatal("empty registry")
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Type >= all[i].Type {
			t.Errorf("Schemas not ascending at %d: %d then %d", i, all[i-1].Type, all[i].Type)
		}
	}
}

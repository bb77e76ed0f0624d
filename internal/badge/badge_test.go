package badge

import "testing"

func TestCatalogSeed(t *testing.T) {
	defs := Catalog()
	if len(defs) != 4 {
		t.Fatalf("catalog size = %d, want 4", len(defs))
	}

	expected := []string{"first_chore", "ten_chores", "fifty_chores", "point_collector"}
	for i, key := range expected {
		if defs[i].Key != key {
			t.Errorf("catalog[%d].Key = %q, want %q", i, defs[i].Key, key)
		}
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	defs := Catalog()
	defs[0].Key = "mutated"

	if got := Catalog()[0].Key; got != "first_chore" {
		t.Errorf("catalog[0].Key = %q after caller mutation, want %q", got, "first_chore")
	}
}

func TestLookup(t *testing.T) {
	d, ok := Lookup("ten_chores")
	if !ok {
		t.Fatal("ten_chores not found")
	}
	if d.Threshold != 10 || d.Metric != MetricCompletedChores {
		t.Errorf("ten_chores = %+v", d)
	}

	if _, ok := Lookup("no_such_badge"); ok {
		t.Error("unknown key should not be found")
	}
}

func TestEvaluateThresholds(t *testing.T) {
	tests := []struct {
		completed int
		points    int
		want      []string
	}{
		{0, 0, nil},
		{1, 5, []string{"first_chore"}},
		{10, 50, []string{"first_chore", "ten_chores"}},
		{50, 250, []string{"first_chore", "ten_chores", "fifty_chores"}},
		{3, 500, []string{"first_chore", "point_collector"}},
	}

	for _, tt := range tests {
		got := Evaluate(NewProgress(tt.completed, tt.points, nil))
		if len(got) != len(tt.want) {
			t.Errorf("Evaluate(%d chores, %d pts) returned %d badges, want %d",
				tt.completed, tt.points, len(got), len(tt.want))
			continue
		}
		for i, d := range got {
			if d.Key != tt.want[i] {
				t.Errorf("Evaluate(%d, %d)[%d] = %q, want %q",
					tt.completed, tt.points, i, d.Key, tt.want[i])
			}
		}
	}
}

func TestEvaluateExcludesEarned(t *testing.T) {
	earned := []string{"first_chore", "ten_chores"}
	got := Evaluate(NewProgress(50, 0, earned))

	if len(got) != 1 || got[0].Key != "fifty_chores" {
		t.Fatalf("Evaluate = %v, want only fifty_chores", got)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	p := NewProgress(10, 0, nil)
	first := Evaluate(p)

	var keys []string
	for _, d := range first {
		keys = append(keys, d.Key)
	}

	again := Evaluate(NewProgress(10, 0, keys))
	if len(again) != 0 {
		t.Errorf("second evaluation returned %v, want none", again)
	}
}

func TestFraction(t *testing.T) {
	ten, _ := Lookup("ten_chores")

	if got := Fraction(ten, NewProgress(0, 0, nil)); got != 0 {
		t.Errorf("fraction at 0 = %v, want 0", got)
	}
	if got := Fraction(ten, NewProgress(5, 0, nil)); got != 0.5 {
		t.Errorf("fraction at 5 = %v, want 0.5", got)
	}
	if got := Fraction(ten, NewProgress(25, 0, nil)); got != 1 {
		t.Errorf("fraction past threshold = %v, want 1", got)
	}
	if got := Fraction(ten, NewProgress(0, 0, []string{"ten_chores"})); got != 1 {
		t.Errorf("fraction when earned = %v, want 1", got)
	}
}

package engine

import "testing"

func TestIsValidAnswer(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"whitespace string counts", " ", true},
		{"text", "Senior Engineer", true},
		{"zero number counts", float64(0), true},
		{"number", float64(85000), true},
		{"false bool counts", false, true},
		{"empty slice", []interface{}{}, false},
		{"slice", []interface{}{"startup"}, true},
		{"empty string slice", []string{}, false},
		{"string slice", []string{"a"}, true},
		{"empty map", map[string]interface{}{}, false},
		{"map", map[string]interface{}{"x": 40.0}, true},
		{"empty typed map", map[string]float64{}, false},
		{"typed map", map[string]float64{"x": 60}, true},
		{"other slice type", []int{}, false},
		{"other slice type non-empty", []int{1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidAnswer(tt.value); got != tt.want {
				t.Errorf("IsValidAnswer(%#v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

package jirapush

import (
	"reflect"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Needs Review", "needs-review"},
		{"UI/UX", "ui-ux"},
		{"backend", "backend"},
		{"  API v2  ", "api-v2"},
		{"---", ""},
		{"", ""},
		{"alreadyclean", "alreadyclean"},
		{"Sprint #42!", "sprint-42"},
	}
	for _, tc := range cases {
		if got := SanitizeLabel(tc.in); got != tc.want {
			t.Errorf("SanitizeLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeLabelsDropsEmptyAndDuplicates(t *testing.T) {
	got := SanitizeLabels([]string{"Needs Review", "UI/UX", "", "needs review", "!!!"})
	want := []string{"needs-review", "ui-ux"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeLabels() = %v, want %v", got, want)
	}
}

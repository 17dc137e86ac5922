package user

import (
	"encoding/json"
	"testing"
)

func TestTextUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want Text
	}{
		{`"20123456789"`, "20123456789"},
		{`20123456789`, "20123456789"},
		{`3`, "3"},
		{`"retail"`, "retail"},
		{`true`, "true"},
		{`null`, ""},
		{`""`, ""},
	}
	for _, tc := range cases {
		var got Text
		if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("unmarshal %s = %q, want %q", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{`{"a":1}`, `[1]`} {
		var got Text
		if err := json.Unmarshal([]byte(bad), &got); err == nil {
			t.Fatalf("expected error for %s", bad)
		}
	}
}

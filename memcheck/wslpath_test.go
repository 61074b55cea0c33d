package memcheck

import "testing"

func TestToWSLPath(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"drive letter", `C:\projects\main.c`, "/mnt/c/projects/main.c"},
		{"drive letter lowered", `D:\a\b.c`, "/mnt/d/a/b.c"},
		{"already unix", "/home/user/main.c", "/home/user/main.c"},
		{"backslashes without drive", `dir\sub\main.c`, "dir/sub/main.c"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToWSLPath(tc.in)
			if got != tc.want {
				t.Errorf("ToWSLPath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

package memcheck

import "strings"

// ToWSLPath rewrites a Windows path into the WSL mount convention:
// C:\src\main.c -> /mnt/c/src/main.c. Paths without a drive letter only get
// their separators normalized. The reverse mapping is deliberately absent:
// every path the orchestrators report back to the user stays in the caller's
// convention.
func ToWSLPath(path string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	if len(p) >= 2 && p[1] == ':' {
		drive := strings.ToLower(p[:1])
		p = "/mnt/" + drive + p[2:]
	}
	return p
}

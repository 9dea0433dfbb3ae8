package platform

import "strings"

// Name identifies an external fantasy platform.
type Name string

const (
	Sleeper     Name = "sleeper"
	Fleaflicker Name = "fleaflicker"
)

func (n Name) String() string {
	return string(n)
}

func (n Name) Valid() bool {
	switch n {
	case Sleeper, Fleaflicker:
		return true
	default:
		return false
	}
}

// Normalize lowercases and trims a raw platform string into a Name.
// Unknown platforms pass through so callers can report them precisely.
func Normalize(raw string) Name {
	return Name(strings.ToLower(strings.TrimSpace(raw)))
}

package course

import "strings"

// Separator joins ancestor course names and a leaf name into a dotted path.
const Separator = "."

// SplitName splits a dotted activity path into its head segment and the
// remaining tail. The head is matched against the current course's parts; a
// non-empty tail is routed into a nested course.
func SplitName(name string) (head, tail string) {
	head, tail, _ = strings.Cut(name, Separator)
	return head, tail
}

// JoinName prefixes name with a course name.
func JoinName(prefix, name string) string {
	return prefix + Separator + name
}

// ValidName reports whether name can be used as a part name: non-empty and
// free of the path separator.
func ValidName(name string) bool {
	return name != "" && !strings.Contains(name, Separator)
}

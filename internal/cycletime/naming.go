package cycletime

import (
	"fmt"
	"path/filepath"
	"strings"
)

// UniqueStems returns one label per path: the file name without its
// extension, suffixed _2, _3, ... when an earlier path in the list already
// claimed it. Claims ignore case so outputs stay distinct on case-insensitive
// file systems.
func UniqueStems(paths []string) []string {
	claimed := make(map[string]struct{}, len(paths))
	out := make([]string, len(paths))
	for i, p := range paths {
		base := stem(p)
		label := base
		for n := 2; ; n++ {
			if _, taken := claimed[strings.ToLower(label)]; !taken {
				break
			}
			label = fmt.Sprintf("%s_%d", base, n)
		}
		claimed[strings.ToLower(label)] = struct{}{}
		out[i] = label
	}
	return out
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

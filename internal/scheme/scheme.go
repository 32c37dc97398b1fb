// Package scheme classifies the directory layout of a dataset from the
// relative paths of its data files.
package scheme

import (
	"encoding/json"
	"fmt"
	"strings"

	"parquet-dataset/internal/model"
	"parquet-dataset/internal/pathutil"
)

// Tag names a partitioning scheme.
type Tag string

const (
	// Empty means no files were supplied.
	Empty Tag = "empty"
	// Simple is a single file with no directory structure.
	Simple Tag = "simple"
	// Flat is a directory of files with no subdirectories.
	Flat Tag = "flat"
	// Hive uses key=value directory names with the same keys at every depth.
	Hive Tag = "hive"
	// Drill uses plain directory names whose position determines the column.
	Drill Tag = "drill"
	// Other is any layout that does not fit the schemes above.
	Other Tag = "other"
)

// Tags lists every scheme in classification order.
var Tags = []Tag{Empty, Simple, Flat, Hive, Drill, Other}

func (t Tag) String() string {
	return string(t)
}

// Partitioned reports whether the scheme carries partition values in
// directory names.
func (t Tag) Partitioned() bool {
	return t == Hive || t == Drill
}

// UnmarshalJSON accepts only known scheme names.
func (t *Tag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, known := range Tags {
		if string(known) == s {
			*t = known
			return nil
		}
	}
	return fmt.Errorf("unknown scheme %q", s)
}

// ParseSegment splits a directory name of the form key=value. The key is
// everything before the first '=' and must be non-empty; the value may be
// empty and may itself contain '='.
func ParseSegment(seg string) (key, value string, ok bool) {
	i := strings.IndexByte(seg, '=')
	if i <= 0 {
		return "", "", false
	}
	return seg[:i], seg[i+1:], true
}

// KeyNames returns the ordered keys of the directory segments of a relative
// path. ok is false if any directory segment is not of the form key=value.
func KeyNames(rel string) ([]string, bool) {
	return keysOf(pathutil.Segments(rel))
}

func keysOf(segs []string) ([]string, bool) {
	if len(segs) == 0 {
		return nil, true
	}
	keys := make([]string, 0, len(segs)-1)
	for _, seg := range segs[:len(segs)-1] {
		k, _, ok := ParseSegment(seg)
		if !ok {
			return nil, false
		}
		keys = append(keys, k)
	}
	return keys, true
}

// Classify returns the partitioning scheme for a list of relative paths.
// An absent entry denotes a dataset that is a single object. Classify is
// total: every input maps to exactly one Tag.
func Classify(paths []model.Optional[string]) Tag {
	if len(paths) == 0 {
		return Empty
	}

	absent := 0
	for _, p := range paths {
		if !p.Valid() {
			absent++
		}
	}
	switch {
	case absent == len(paths):
		return Simple
	case absent > 0:
		return Other
	}

	segs := make([][]string, len(paths))
	for i, p := range paths {
		v, _ := p.Get()
		segs[i] = pathutil.Segments(v)
	}

	depth := len(segs[0])
	for _, s := range segs[1:] {
		if len(s) != depth {
			return Other
		}
	}
	if depth <= 1 {
		return Flat
	}

	if isHive(segs) {
		return Hive
	}
	return Drill
}

// ClassifyStrings classifies a list of paths that are all present.
func ClassifyStrings(paths []string) Tag {
	return Classify(model.Strings(paths))
}

func isHive(segs [][]string) bool {
	var want []string
	for i, s := range segs {
		keys, ok := keysOf(s)
		if !ok {
			return false
		}
		if i == 0 {
			want = keys
			continue
		}
		for j := range keys {
			if keys[j] != want[j] {
				return false
			}
		}
	}
	return true
}

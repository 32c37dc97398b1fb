// Package partition recovers typed partition columns from the directory
// names of a hive or drill laid out dataset.
package partition

import (
	"fmt"
	"net/url"
	"strconv"

	"parquet-dataset/internal/pathutil"
	"parquet-dataset/internal/scheme"
	"parquet-dataset/internal/utils"
)

// DrillPrefix names drill columns dir0, dir1 and so on.
const DrillPrefix = "dir"

// Extract returns the partition column names and, per file, the raw token
// of each column. Schemes without directory partitions yield no columns.
// Paths whose directory depth disagrees with the first path are rejected
// with INVALID_PATH.
func Extract(tag scheme.Tag, rel []string) ([]string, [][]string, error) {
	switch tag {
	case scheme.Hive:
		return extractHive(rel)
	case scheme.Drill:
		return extractDrill(rel)
	default:
		return nil, nil, nil
	}
}

// dirSegments returns the directory segments of every path, requiring each
// to have exactly depth of them.
func dirSegments(rel []string, depth int) ([][]string, error) {
	out := make([][]string, len(rel))
	for i, p := range rel {
		segs := pathutil.Segments(p)
		if len(segs) == 0 || len(segs)-1 != depth {
			return nil, utils.NewInvalidPathError("partition depth differs between paths",
				fmt.Sprintf("path %q has %d directories, expected %d", p, max(len(segs)-1, 0), depth))
		}
		out[i] = segs[:depth]
	}
	return out, nil
}

func extractHive(rel []string) ([]string, [][]string, error) {
	if len(rel) == 0 {
		return nil, nil, nil
	}
	names, ok := scheme.KeyNames(rel[0])
	if !ok {
		return nil, nil, utils.NewInvalidPathError("path is not hive partitioned", rel[0])
	}
	dirs, err := dirSegments(rel, len(names))
	if err != nil {
		return nil, nil, err
	}
	rows := make([][]string, len(rel))
	for i, segs := range dirs {
		row := make([]string, len(segs))
		for j, seg := range segs {
			k, v, ok := scheme.ParseSegment(seg)
			if !ok || k != names[j] {
				return nil, nil, utils.NewInvalidPathError("partition keys differ between paths",
					fmt.Sprintf("path %q has %q where key %q was expected", rel[i], seg, names[j]))
			}
			row[j] = unescape(v)
		}
		rows[i] = row
	}
	return names, rows, nil
}

// extractDrill keeps every directory segment verbatim, key=value ones
// included.
func extractDrill(rel []string) ([]string, [][]string, error) {
	if len(rel) == 0 {
		return nil, nil, nil
	}
	depth := max(len(pathutil.Segments(rel[0]))-1, 0)
	dirs, err := dirSegments(rel, depth)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, depth)
	for j := range names {
		names[j] = DrillPrefix + strconv.Itoa(j)
	}
	rows := make([][]string, len(rel))
	for i, segs := range dirs {
		row := make([]string, len(segs))
		for j, seg := range segs {
			row[j] = unescape(seg)
		}
		rows[i] = row
	}
	return names, rows, nil
}

// unescape decodes the percent-escapes writers apply to partition values
// (for example ':' in timestamps), keeping the raw text if it is malformed.
func unescape(v string) string {
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

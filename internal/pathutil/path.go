// Package pathutil implements the string algebra used to relativize dataset
// file listings: separator normalization, segment-wise common prefixes and an
// unambiguous join that is the inverse of Split.
//
// All functions operate on '/' separated strings regardless of platform.
package pathutil

import (
	"strings"

	"parquet-dataset/internal/utils"
)

// Sep is the canonical path separator.
const Sep = "/"

// splitPrefix separates a rooted prefix ("/" or a drive prefix such as "C:/")
// from the remainder of an already slash-converted path.
func splitPrefix(p string) (prefix, rest string) {
	if strings.HasPrefix(p, Sep) {
		return Sep, p[1:]
	}
	if len(p) >= 3 && isDriveLetter(p[0]) && p[1] == ':' && p[2] == '/' {
		return p[:3], p[3:]
	}
	return "", p
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// resolve drops empty and "." segments and folds "..". Rooted paths clamp
// ".." at the root; relative paths keep leading "..".
func resolve(rooted bool, segs []string) []string {
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		switch s {
		case "", ".":
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
			} else if !rooted {
				out = append(out, s)
			}
		default:
			out = append(out, s)
		}
	}
	return out
}

// parts returns the rooted prefix and the resolved segments of p.
func parts(p string) (string, []string) {
	prefix, rest := splitPrefix(strings.ReplaceAll(p, `\`, Sep))
	return prefix, resolve(prefix != "", strings.Split(rest, Sep))
}

// Segments returns the resolved segments of p, without any rooted prefix.
func Segments(p string) []string {
	_, segs := parts(p)
	return segs
}

// Normalize converts p to canonical form: '/' separators, no empty or "."
// segments, ".." folded, no trailing separator. A leading separator is kept.
func Normalize(p string) string {
	prefix, segs := parts(p)
	return prefix + strings.Join(segs, Sep)
}

// Join concatenates parts with exactly one separator between them and strips
// any trailing separator. Empty parts are no-ops; the first non-empty part
// decides whether the result is rooted.
func Join(elems ...string) string {
	var prefix string
	var segs []string
	first := true
	for _, e := range elems {
		e = strings.ReplaceAll(e, `\`, Sep)
		if e == "" {
			continue
		}
		if first {
			prefix, e = splitPrefix(e)
			first = false
		}
		segs = append(segs, strings.Split(e, Sep)...)
	}
	return prefix + strings.Join(resolve(prefix != "", segs), Sep)
}

// Split is the inverse of Join: it returns p relative to base. ok is false
// when p does not lie under base segment-wise.
func Split(base, p string) (rel string, ok bool) {
	bp, bs := parts(base)
	pp, ps := parts(p)
	if bp == "" && len(bs) == 0 {
		return pp + strings.Join(ps, Sep), true
	}
	if bp != pp || len(bs) > len(ps) {
		return "", false
	}
	for i := range bs {
		if bs[i] != ps[i] {
			return "", false
		}
	}
	return strings.Join(ps[len(bs):], Sep), true
}

// Base returns the final segment of p, or "" for an empty path.
func Base(p string) string {
	segs := Segments(p)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// Analyse computes the longest segment-wise common directory of paths and
// returns it together with every path made relative to it, in input order.
// The final segment of a path is never part of the base, so a lone file
// "c/a" yields ("c", ["a"]) and ["a", "b"] yields ("", ["a", "b"]).
func Analyse(paths []string) (string, []string) {
	rel := make([]string, len(paths))
	if len(paths) == 0 {
		return "", rel
	}

	prefixes := make([]string, len(paths))
	segs := make([][]string, len(paths))
	for i, p := range paths {
		prefixes[i], segs[i] = parts(p)
	}

	prefix := prefixes[0]
	base := dirOf(segs[0])
	for i := range segs {
		if prefixes[i] != prefix {
			// Mixed rooted and relative inputs share no base at all.
			for j := range segs {
				rel[j] = prefixes[j] + strings.Join(segs[j], Sep)
			}
			return "", rel
		}
		dir := dirOf(segs[i])
		n := min(len(base), len(dir))
		k := 0
		for k < n && base[k] == dir[k] {
			k++
		}
		base = base[:k]
	}

	l := len(base)
	for i := range segs {
		rel[i] = strings.Join(segs[i][l:], Sep)
	}
	return prefix + strings.Join(base, Sep), rel
}

// AnalyseWithRoot relativizes paths against a caller-supplied root instead of
// the computed common prefix. Every path must begin with root.
func AnalyseWithRoot(paths []string, root string) (string, []string, error) {
	base := Normalize(root)
	rel := make([]string, len(paths))
	for i, p := range paths {
		r, ok := Split(base, p)
		if !ok {
			return "", nil, utils.NewInvalidPathError("all paths must begin with the given root",
				"root="+base+" path="+p)
		}
		rel[i] = r
	}
	return base, rel, nil
}

func dirOf(segs []string) []string {
	if len(segs) == 0 {
		return segs
	}
	return segs[:len(segs)-1]
}

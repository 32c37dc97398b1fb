package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parquet-dataset/internal/utils"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"/", "/"},
		{"a/b/", "a/b"},
		{"a//b", "a/b"},
		{`a\b\c`, "a/b/c"},
		{"./a/./b", "a/b"},
		{"a/../b", "b"},
		{"../a", "../a"},
		{"/../a", "/a"},
		{`C:\data\x`, "C:/data/x"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "Normalize(%q)", tc.in)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/this/is/a/test", Join("/", "this/is/a/test/"))
	assert.Equal(t, "this/is/a/test", Join("", "this/is/a/test/"))
	assert.Equal(t, "test", Join("test", ""))
	assert.Equal(t, "a/b/c", Join("a/", "/b", "c/"))
	assert.Equal(t, "", Join("", ""))
	assert.Equal(t, "/", Join("/"))
	assert.Equal(t, "a/c", Join("a/b", "../c"))
}

func TestSplit(t *testing.T) {
	rel, ok := Split("c/d", "c/d/e/f")
	require.True(t, ok)
	assert.Equal(t, "e/f", rel)

	_, ok = Split("c/d", "c/dd/e")
	assert.False(t, ok, "prefix match must be segment-wise")

	_, ok = Split("/c", "c/a")
	assert.False(t, ok)

	rel, ok = Split("", "/x/y")
	require.True(t, ok)
	assert.Equal(t, "/x/y", rel)
}

func TestAnalyse(t *testing.T) {
	cases := []struct {
		name     string
		paths    []string
		wantBase string
		wantRel  []string
	}{
		{"bare files", []string{"a", "b"}, "", []string{"a", "b"}},
		{"relative dir", []string{"c/a", "c/b"}, "c", []string{"a", "b"}},
		{"rooted dir", []string{"/c/d/a", "/c/d/b"}, "/c/d", []string{"a", "b"}},
		{
			"hive",
			[]string{"c/cat=1/a", "c/cat=2/b", "c/cat=1/c"},
			"c",
			[]string{"cat=1/a", "cat=2/b", "cat=1/c"},
		},
		{"single file", []string{"c/a"}, "c", []string{"a"}},
		{"uneven depth", []string{"x/y/z/a", "x/y/b"}, "x/y", []string{"z/a", "b"}},
		{"trailing separators", []string{"c/a/", "c//b"}, "c", []string{"a", "b"}},
		{"backslashes", []string{`c\d\a`, `c\d\b`}, "c/d", []string{"a", "b"}},
		{"segment-wise prefix", []string{"ab/x", "abc/y"}, "", []string{"ab/x", "abc/y"}},
		{"mixed rooted", []string{"/a/b", "a/c"}, "", []string{"/a/b", "a/c"}},
		{"empty", nil, "", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base, rel := Analyse(tc.paths)
			assert.Equal(t, tc.wantBase, base)
			assert.Equal(t, tc.wantRel, rel)
		})
	}
}

func TestAnalyseJoinRoundTrip(t *testing.T) {
	inputs := [][]string{
		{"a", "b"},
		{"/c/d/a", "/c/d/b"},
		{"c/cat=1/a", "c/cat=2/b", "c/cat=1/c"},
		{"/data/y=2020/m=1/part.0.parquet", "/data/y=2021/m=12/part.1.parquet"},
		{"/a/b", "a/c"},
		{`s3\bucket\x\p.parquet`, "s3/bucket/x/q.parquet"},
	}
	for _, paths := range inputs {
		base, rel := Analyse(paths)
		require.Len(t, rel, len(paths))
		for i := range paths {
			assert.Equal(t, Normalize(paths[i]), Join(base, rel[i]), "paths=%v i=%d", paths, i)
			back, ok := Split(base, paths[i])
			require.True(t, ok)
			assert.Equal(t, rel[i], back)
		}
	}
}

func TestAnalyseWithRoot(t *testing.T) {
	base, rel, err := AnalyseWithRoot([]string{"/r/x=1/a", "/r/x=2/b"}, "/r/")
	require.NoError(t, err)
	assert.Equal(t, "/r", base)
	assert.Equal(t, []string{"x=1/a", "x=2/b"}, rel)

	_, _, err = AnalyseWithRoot([]string{"/r/a", "/q/b"}, "/r")
	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrCodeInvalidPath))
}

func TestBase(t *testing.T) {
	assert.Equal(t, "part.0.parquet", Base("/a/b/part.0.parquet"))
	assert.Equal(t, "b", Base("a/b/"))
	assert.Equal(t, "", Base(""))
}

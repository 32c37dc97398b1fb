package scheme

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parquet-dataset/internal/model"
)

func TestClassify(t *testing.T) {
	none := model.None[string]()
	some := model.Some[string]

	cases := []struct {
		name  string
		paths []model.Optional[string]
		want  Tag
	}{
		{"no entries", nil, Empty},
		{"single object", []model.Optional[string]{none}, Simple},
		{"all absent", []model.Optional[string]{none, none}, Simple},
		{"some absent", []model.Optional[string]{none, some("a")}, Other},
		{"flat", []model.Optional[string]{some("a"), some("b")}, Flat},
		{"hive", []model.Optional[string]{some("cat=1/a"), some("cat=2/b")}, Hive},
		{"hive two levels", []model.Optional[string]{some("y=2020/m=1/a"), some("y=2021/m=12/b")}, Hive},
		{"drill", []model.Optional[string]{some("1/a"), some("2/b")}, Drill},
		{"hive keys differ", []model.Optional[string]{some("cat=1/a"), some("dog=2/b")}, Drill},
		{"hive keys reordered", []model.Optional[string]{some("a=1/b=2/f"), some("b=2/a=1/f")}, Drill},
		{"mixed key=value and bare", []model.Optional[string]{some("cat=1/a"), some("2/b")}, Drill},
		{"uneven depth", []model.Optional[string]{some("a"), some("x/b")}, Other},
		{"empty key is not hive", []model.Optional[string]{some("=1/a"), some("=2/b")}, Drill},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.paths))
		})
	}
}

func TestClassifyStrings(t *testing.T) {
	assert.Equal(t, Hive, ClassifyStrings([]string{"cat=1/a", "cat=2/b", "cat=1/c"}))
	assert.Equal(t, Empty, ClassifyStrings(nil))
}

func TestParseSegment(t *testing.T) {
	k, v, ok := ParseSegment("date=2020-01-01")
	require.True(t, ok)
	assert.Equal(t, "date", k)
	assert.Equal(t, "2020-01-01", v)

	k, v, ok = ParseSegment("expr=a=b")
	require.True(t, ok)
	assert.Equal(t, "expr", k)
	assert.Equal(t, "a=b", v)

	_, v, ok = ParseSegment("k=")
	require.True(t, ok)
	assert.Equal(t, "", v)

	_, _, ok = ParseSegment("plain")
	assert.False(t, ok)
	_, _, ok = ParseSegment("=x")
	assert.False(t, ok)
}

func TestKeyNames(t *testing.T) {
	keys, ok := KeyNames("y=2020/m=1/part.parquet")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "m"}, keys)

	_, ok = KeyNames("y=2020/1/part.parquet")
	assert.False(t, ok)

	keys, ok = KeyNames("part.parquet")
	require.True(t, ok)
	assert.Empty(t, keys)
}

func TestTagJSON(t *testing.T) {
	data, err := json.Marshal(Hive)
	require.NoError(t, err)
	assert.JSONEq(t, `"hive"`, string(data))

	var tag Tag
	require.NoError(t, json.Unmarshal([]byte(`"drill"`), &tag))
	assert.Equal(t, Drill, tag)
	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &tag))
}

func FuzzClassify(f *testing.F) {
	f.Add("cat=1/a", "cat=2/b")
	f.Add("a", "x/b")
	f.Add("", "")
	f.Add(`k=v\x`, "=/=")
	f.Fuzz(func(t *testing.T, a, b string) {
		tag := Classify([]model.Optional[string]{model.Some(a), model.Some(b)})
		known := false
		for _, k := range Tags {
			if k == tag {
				known = true
			}
		}
		if !known {
			t.Fatalf("Classify(%q, %q) returned unknown tag %q", a, b, tag)
		}
		if tag == Simple || tag == Empty {
			t.Fatalf("present paths classified as %q", tag)
		}
		if _, _, ok := ParseSegment(a); ok && a[0] == '=' {
			t.Fatalf("ParseSegment accepted empty key in %q", a)
		}
	})
}

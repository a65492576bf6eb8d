package paramfile

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level int32

func (l level) String() string { return "level" }

type flag bool

func TestDeepMerge(t *testing.T) {
	details := map[string]any{
		"buy":      map[string]any{"rsi": 10, "ema": 5},
		"roi":      map[string]any{"0": 0.1},
		"stoploss": map[string]any{"stoploss": -0.1},
	}
	override := map[string]any{
		"buy":      map[string]any{"rsi": 14},
		"sell":     map[string]any{"threshold": 70},
		"stoploss": -0.2,
	}

	merged := DeepMerge(details, override)

	assert.Equal(t, map[string]any{"rsi": 14, "ema": 5}, merged["buy"])
	assert.Equal(t, map[string]any{"threshold": 70}, merged["sell"])
	assert.Equal(t, map[string]any{"0": 0.1}, merged["roi"])
	assert.Equal(t, -0.2, merged["stoploss"])

	// inputs untouched
	assert.Equal(t, map[string]any{"rsi": 10, "ema": 5}, details["buy"])
	assert.Equal(t, map[string]any{"stoploss": -0.1}, details["stoploss"])

	merged["roi"].(map[string]any)["0"] = 0.5
	assert.Equal(t, 0.1, details["roi"].(map[string]any)["0"])
}

func TestDeepMerge_MapReplacesScalar(t *testing.T) {
	merged := DeepMerge(map[string]any{"a": 5}, map[string]any{"a": map[string]any{"x": 1}})
	assert.Equal(t, map[string]any{"x": 1}, merged["a"])

	merged = DeepMerge(nil, nil)
	assert.Empty(t, merged)
}

func TestMarshal_Narrowing(t *testing.T) {
	data, err := Marshal(map[string]any{
		"b": flag(true),
		"d": decimal.RequireFromString("1.25"),
		"f": 3.0,
		"i": level(3),
		"m": math.Inf(-1),
		"n": math.NaN(),
		"p": math.Inf(1),
		"s": struct{ A int }{A: 1},
		"u": uint8(7),
		"z": nil,
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"b":true,"d":"1.25","f":3.0,"i":3,"m":-Infinity,"n":NaN,"p":Infinity,"s":"{1}","u":7,"z":null}`,
		string(data))
}

func TestMarshal_Collections(t *testing.T) {
	data, err := Marshal(map[string]any{
		"list":  []int{1, 2},
		"empty": map[string]any{},
		"none":  []any{},
		"ptr":   &[]string{"a<b"},
		"keys":  map[int]string{1: "one"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"empty":{},"keys":{"1":"one"},"list":[1,2],"none":[],"ptr":["a<b"]}`, string(data))
}

func TestMarshal_TooDeep(t *testing.T) {
	var v any = 1
	for i := 0; i < maxDepth+5; i++ {
		v = []any{v}
	}
	_, err := Marshal(v)
	assert.Error(t, err)
}

func TestUnmarshal(t *testing.T) {
	doc := `{
  "a": NaN,
  "b": Infinity,
  "c": -Infinity,
  "d": 1,
  "e": 1.5,
  "f": "NaN",
  "g": [1, "x", null, true],
  "h": {"x": 2.0},
  "i": "café",
  "j": "a\/b",
  "k": [NaN, -Infinity],
  "l": "Infinity and NaN",
  "m": 18446744073709551615
}`
	v, err := UnmarshalMap([]byte(doc))
	require.NoError(t, err)

	assert.True(t, math.IsNaN(v["a"].(float64)))
	assert.True(t, math.IsInf(v["b"].(float64), 1))
	assert.True(t, math.IsInf(v["c"].(float64), -1))
	assert.Equal(t, 1, v["d"])
	assert.Equal(t, 1.5, v["e"])
	assert.Equal(t, "NaN", v["f"])
	assert.Equal(t, []any{1, "x", nil, true}, v["g"])
	assert.Equal(t, map[string]any{"x": 2.0}, v["h"])
	assert.Equal(t, "café", v["i"])
	assert.Equal(t, "a/b", v["j"])
	k := v["k"].([]any)
	assert.True(t, math.IsNaN(k[0].(float64)))
	assert.True(t, math.IsInf(k[1].(float64), -1))
	assert.Equal(t, "Infinity and NaN", v["l"])
	assert.Equal(t, uint64(18446744073709551615), v["m"])
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "truncated", data: `{"a": 1`},
		{name: "empty", data: ``},
		{name: "not a mapping", data: `[1, 2]`},
		{name: "yaml document", data: "strategy_name: S\nparams: {}\n"},
		{name: "trailing comment", data: `{"strategy_name": "S"} # c`},
		{name: "second document", data: `{"a": 1} {"b": 2}`},
		{name: "single quotes", data: `{'a': 1}`},
		{name: "bare word", data: `{"a": NaNa}`},
		{name: "number out of range", data: `{"a": 1e400}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalMap([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidFile)
		})
	}
}

func TestMarshalIndent_RoundTrip(t *testing.T) {
	in := map[string]any{
		"roi":   map[string]any{"0": 0.1, "30": 0.05},
		"buy":   map[string]any{"rsi": 14, "enabled": true, "ratio": math.NaN()},
		"label": "x",
	}
	data, err := MarshalIndent(in, "  ")
	require.NoError(t, err)

	out, err := UnmarshalMap(data)
	require.NoError(t, err)
	assert.Equal(t, in["roi"], out["roi"])
	assert.Equal(t, "x", out["label"])

	buy := out["buy"].(map[string]any)
	assert.Equal(t, 14, buy["rsi"])
	assert.Equal(t, true, buy["enabled"])
	assert.True(t, math.IsNaN(buy["ratio"].(float64)))
}

func TestEncode(t *testing.T) {
	f := &File{
		StrategyName: "Sample",
		Params: map[string]any{
			"buy": map[string]any{"rsi": 14, "ratio": 0.5},
			"roi": map[string]any{"0": 0.1},
		},
		Version:    FileVersion,
		ExportTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := Encode(f)
	require.NoError(t, err)

	want := `{
  "strategy_name": "Sample",
  "params": {
    "buy": {
      "ratio": 0.5,
      "rsi": 14
    },
    "roi": {
      "0": 0.1
    }
  },
  "ft_stratparam_v": 2,
  "export_time": "2024-01-02T03:04:05Z"
}
`
	assert.Equal(t, want, string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, f.StrategyName, decoded.StrategyName)
	assert.Equal(t, f.Params, decoded.Params)
	assert.Equal(t, f.Version, decoded.Version)
	assert.True(t, f.ExportTime.Equal(decoded.ExportTime))
	assert.Equal(t, map[string]any{"0": 0.1}, decoded.Space("roi"))
	assert.Nil(t, decoded.Space("sell"))
}

func TestDecode(t *testing.T) {
	t.Run("legacy file", func(t *testing.T) {
		data := `{"strategy_name": "Old", "params": {"buy": {"rsi": 20}}, "export_time": "2021-06-01 10:00:00.123456+00:00"}`
		f, err := Decode([]byte(data))
		require.NoError(t, err)
		assert.Equal(t, LegacyVersion, f.Version)
		assert.Equal(t, map[string]any{"rsi": 20}, f.Space("buy"))
		assert.True(t, time.Date(2021, 6, 1, 10, 0, 0, 123456000, time.UTC).Equal(f.ExportTime))
	})

	t.Run("newer version", func(t *testing.T) {
		_, err := Decode([]byte(`{"strategy_name": "New", "params": {}, "ft_stratparam_v": 3}`))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("params not a mapping", func(t *testing.T) {
		_, err := Decode([]byte(`{"strategy_name": "Bad", "params": [1]}`))
		assert.ErrorIs(t, err, ErrInvalidFile)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		_, err := Decode([]byte(`{"strategy_name": "Bad", "export_time": "yesterday"}`))
		assert.ErrorIs(t, err, ErrInvalidFile)
	})
}

func TestExportLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies", "Sample.json")
	resolved := ResolvedParams{
		Details: map[string]any{
			"buy": map[string]any{"rsi": 10, "ema": 5},
			"roi": map[string]any{"0": 0.1},
		},
		NotOptimized: map[string]any{
			"buy":  map[string]any{"rsi": 14},
			"sell": map[string]any{"x": 1},
		},
		FormatVersion: 2,
	}

	require.NoError(t, Export(resolved, "Sample", path))

	require.FileExists(t, path)

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sample", f.StrategyName)
	assert.Equal(t, FileVersion, f.Version)
	assert.WithinDuration(t, time.Now(), f.ExportTime, time.Minute)
	assert.Equal(t, map[string]any{
		"buy":  map[string]any{"rsi": 14, "ema": 5},
		"sell": map[string]any{"x": 1},
		"roi":  map[string]any{"0": 0.1},
	}, f.Params)
}

func TestExport_Unwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	err := Export(ResolvedParams{}, "Sample", filepath.Join(blocker, "Sample.json"))
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"strategy_name": `), 0600))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestResolvedFromRecord(t *testing.T) {
	tests := []struct {
		name        string
		record      map[string]any
		wantVersion int
		wantErr     bool
	}{
		{name: "legacy", record: map[string]any{}, wantVersion: 1},
		{name: "version field", record: map[string]any{"ft_stratparam_v": 2.0}, wantVersion: 2},
		{name: "result file version", record: map[string]any{"fthypt_fileversion": 2}, wantVersion: 2},
		{name: "details not a mapping", record: map[string]any{"params_details": "x"}, wantErr: true},
		{name: "bad version", record: map[string]any{"ft_stratparam_v": "two"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvedFromRecord(tt.record)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, got.FormatVersion)
			assert.NotNil(t, got.Details)
			assert.NotNil(t, got.NotOptimized)
		})
	}
}

func TestVersions(t *testing.T) {
	assert.False(t, Exportable(1))
	assert.True(t, Exportable(2))
	assert.True(t, Exportable(3))
	assert.False(t, Exportable(-1))

	assert.NoError(t, CheckCompatibility(1))
	assert.NoError(t, CheckCompatibility(FileVersion))
	assert.ErrorIs(t, CheckCompatibility(FileVersion+1), ErrUnsupportedVersion)
	assert.Error(t, CheckCompatibility(-1))
}

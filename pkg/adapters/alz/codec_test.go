package alz_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/heimer/pkg/adapters/alz"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() domain.MindMap {
	return domain.MindMap{
		Version:         "1.0",
		BackgroundColor: domain.MustParseColor("#202020"),
		EdgeColor:       domain.DefaultEdgeColor,
		Nodes: []domain.Node{
			{ID: 0, Text: "root & <friends>", Location: domain.Point{}, Color: domain.White, TextColor: domain.Black},
			{ID: 3, Text: "child", Location: domain.Point{X: 210.5, Y: -40}, Color: domain.MustParseColor("#ffcc00"), TextColor: domain.Black},
		},
		Edges: []domain.Edge{{Source: 0, Target: 3, Text: "why"}},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	for _, name := range []string{"map.alz", "map.json"} {
		t.Run(name, func(t *testing.T) {
			codec := alz.New()
			path := filepath.Join(t.TempDir(), name)

			require.NoError(t, codec.Save(context.Background(), sample(), path))
			got, err := codec.Load(context.Background(), path)
			require.NoError(t, err)

			if diff := cmp.Diff(sample(), got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodec_WritesXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.alz")
	require.NoError(t, alz.New().Save(context.Background(), sample(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<heimer-mind-map version="1.0">`)
	assert.Contains(t, string(data), `<edge index0="0" index1="3">`)
}

func TestCodec_LoadErrors(t *testing.T) {
	codec := alz.New()
	dir := t.TempDir()

	_, err := codec.Load(context.Background(), filepath.Join(dir, "missing.alz"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.alz")
	require.NoError(t, os.WriteFile(garbage, []byte("not xml"), 0644))
	_, err = codec.Load(context.Background(), garbage)
	assert.Error(t, err)
}

func TestDecode_DefaultsColors(t *testing.T) {
	m, err := alz.Decode([]byte(`<heimer-mind-map version="1.0"><node index="0" x="1" y="2"><text>a</text></node></heimer-mind-map>`))
	require.NoError(t, err)
	assert.Equal(t, domain.White, m.BackgroundColor)
	require.Len(t, m.Nodes, 1)
	assert.Equal(t, domain.Black, m.Nodes[0].TextColor)
	assert.Equal(t, domain.Point{X: 1, Y: 2}, m.Nodes[0].Location)
}

func TestCodec_Extension(t *testing.T) {
	assert.Equal(t, alz.FileExtension, alz.New().Extension())
}

package geometry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalCode(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		require.Equal(t, "KR", CanonicalCode(" kr "))
	})

	t.Run("resolves through the explicit table, not similarity", func(t *testing.T) {
		// FIPS "KS" is South Korea; ISO "KR" is South Korea. Both must land
		// on the same canonical code even though the strings differ.
		require.Equal(t, "KR", CanonicalCode("KS"))
		require.Equal(t, CanonicalCode("KR"), CanonicalCode("KS"))
	})

	t.Run("collision-prone codes follow the table", func(t *testing.T) {
		// FIPS "AS" means Australia, not American Samoa.
		require.Equal(t, "AU", CanonicalCode("AS"))
	})

	t.Run("unmapped codes pass through normalized", func(t *testing.T) {
		require.Equal(t, "ZZ", CanonicalCode("zz"))
	})
}

func TestSimplifyRing(t *testing.T) {
	ring := func(n int) [][2]float64 {
		out := make([][2]float64, n)
		for i := range out {
			out[i] = [2]float64{float64(i), float64(i * 2)}
		}
		return out
	}

	t.Run("short rings are unchanged", func(t *testing.T) {
		in := ring(150)
		require.Equal(t, in, SimplifyRing(in))
	})

	t.Run("long rings subsample to the vertex limit", func(t *testing.T) {
		for _, n := range []int{200, 201, 500, 10000} {
			out := SimplifyRing(ring(n))
			if n <= MaxRingVertices {
				require.Len(t, out, n)
				continue
			}
			require.Len(t, out, MaxRingVertices, "n=%d", n)
			require.Equal(t, [2]float64{0, 0}, out[0], "first vertex kept")
			require.Equal(t, [2]float64{float64(n - 1), float64(2 * (n - 1))}, out[len(out)-1], "last vertex kept")
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		in := ring(777)
		require.Equal(t, SimplifyRing(in), SimplifyRing(in))
	})
}

const boundariesFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "properties": {"ISO_A2": "KR", "ADMIN": "South Korea"},
      "geometry": {"type": "Polygon", "coordinates": [[[126,34],[130,34],[130,39],[126,39],[126,34]]]}
    },
    {
      "properties": {"ISO_A2": "JP", "ADMIN": "Japan"},
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[129,31],[146,31],[146,46],[129,46],[129,31]]]]}
    },
    {
      "properties": {"ISO_A2": "-99"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
    }
  ]
}`

func TestParseBoundaries(t *testing.T) {
	b, err := parseBoundaries([]byte(boundariesFixture))
	require.NoError(t, err)
	require.Len(t, b.Features, 2, "features without a usable code are skipped")

	kr, ok := b.Find("KR")
	require.True(t, ok)
	require.Equal(t, "South Korea", kr.Name)
	require.Len(t, kr.Rings, 1)

	// The FIPS alias must resolve to the same feature.
	viaFIPS, ok := b.Find("ks")
	require.True(t, ok)
	require.Equal(t, kr.Code, viaFIPS.Code)

	_, ok = b.Find("XX")
	require.False(t, ok)
}

type memoryCache struct {
	raw []byte
}

func (c *memoryCache) Get(context.Context) ([]byte, bool) { return c.raw, c.raw != nil }
func (c *memoryCache) Put(_ context.Context, raw []byte)  { c.raw = raw }

func TestResolverFetchesOnce(t *testing.T) {
	var fetches atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		_, _ = io.WriteString(w, boundariesFixture)
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewResolver(srv.URL, nil, log, nil)

	first, err := r.Boundaries(context.Background())
	require.NoError(t, err)
	second, err := r.Boundaries(context.Background())
	require.NoError(t, err)
	require.Same(t, first, second, "all callers share one parsed dataset")
	require.EqualValues(t, 1, fetches.Load())
}

func TestResolverRetriesAfterFailure(t *testing.T) {
	var fetches atomic.Int64
	fail := atomic.Bool{}
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, boundariesFixture)
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewResolver(srv.URL, nil, log, nil)

	_, err := r.Boundaries(context.Background())
	require.Error(t, err, "nothing is cached on failure")

	fail.Store(false)
	b, err := r.Boundaries(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, b.Features)
	require.EqualValues(t, 2, fetches.Load())
}

func TestResolverUsesAndFillsCache(t *testing.T) {
	var fetches atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		_, _ = io.WriteString(w, boundariesFixture)
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cache := &memoryCache{}
	r := NewResolver(srv.URL, cache, log, nil)
	_, err := r.Boundaries(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, fetches.Load())
	require.NotNil(t, cache.raw, "raw document written through to the cache")

	// A second process start with a warm cache never hits the network.
	r2 := NewResolver(srv.URL, cache, log, nil)
	_, err = r2.Boundaries(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, fetches.Load())
}

func TestResolverRejectsMalformedDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewResolver(srv.URL, nil, log, nil)
	_, err := r.Boundaries(context.Background())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "parse boundaries"), fmt.Sprintf("got %v", err))
}

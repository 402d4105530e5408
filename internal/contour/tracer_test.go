package contour

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"testing"

	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
	"github.com/MeKo-Tech/pixgroup/internal/pointset"
	"github.com/MeKo-Tech/pixgroup/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(t *testing.T) *pixbuf.Buffer {
	t.Helper()
	return testutil.Art(t, pixbuf.Depth8,
		"....",
		".##.",
		".##.",
		"....",
	)
}

func ring(t *testing.T) *pixbuf.Buffer {
	t.Helper()
	return testutil.Art(t, pixbuf.Depth8,
		".....",
		".###.",
		".#.#.",
		".###.",
		".....",
	)
}

func config(conn pixbuf.Connectivity) Config {
	c := DefaultConfig()
	c.Connectivity = conn
	return c
}

func TestFindContour_SquareFromNorth(t *testing.T) {
	for _, conn := range []pixbuf.Connectivity{pixbuf.Four, pixbuf.Eight} {
		t.Run(conn.String(), func(t *testing.T) {
			src := square(t)
			res, err := FindContour(src, pointset.Pt(1, 0), South, config(conn))
			require.NoError(t, err)

			assert.Equal(t, []pointset.Point{
				pointset.Pt(1, 1), pointset.Pt(2, 1), pointset.Pt(2, 2), pointset.Pt(1, 2),
			}, res.Points.Points())
			assert.Equal(t, 4, res.Turns)
			assert.Equal(t, Clockwise, res.Rotation)
			assert.Equal(t, pixbuf.ColorHigh, res.Surrounded)
			assert.Equal(t, pixbuf.ColorHigh, res.Points.Color())
			assert.Equal(t, conn, res.Connectivity)
			assert.Equal(t, image.Rect(1, 1, 3, 3), res.Points.Bounds())

			// The temporary border is gone.
			assert.Equal(t, 0, src.Border())
		})
	}
}

func TestFindContour_SinglePixel(t *testing.T) {
	src := testutil.Art(t, pixbuf.Depth1,
		"...",
		".#.",
		"...",
	)
	res, err := FindContour(src, pointset.Pt(0, 1), East, config(pixbuf.Four))
	require.NoError(t, err)
	assert.Equal(t, []pointset.Point{pointset.Pt(1, 1)}, res.Points.Points())
	assert.Equal(t, 4, res.Turns)
	assert.Equal(t, Clockwise, res.Rotation)
}

func TestFindContour_HoleIsAnticlockwise(t *testing.T) {
	t.Run("4-connected", func(t *testing.T) {
		res, err := FindContour(ring(t), pointset.Pt(2, 2), East, config(pixbuf.Four))
		require.NoError(t, err)
		assert.Equal(t, -4, res.Turns)
		assert.Equal(t, Anticlockwise, res.Rotation)
		assert.Equal(t, pixbuf.ColorLow, res.Surrounded)
		assert.Equal(t, []pointset.Point{
			pointset.Pt(3, 2), pointset.Pt(3, 1), pointset.Pt(2, 1), pointset.Pt(1, 1),
			pointset.Pt(1, 2), pointset.Pt(1, 3), pointset.Pt(2, 3), pointset.Pt(3, 3),
		}, res.Points.Points())
	})

	t.Run("8-connected", func(t *testing.T) {
		res, err := FindContour(ring(t), pointset.Pt(2, 2), East, config(pixbuf.Eight))
		require.NoError(t, err)
		assert.Equal(t, -4, res.Turns)
		assert.Equal(t, Anticlockwise, res.Rotation)
		assert.Equal(t, []pointset.Point{
			pointset.Pt(3, 2), pointset.Pt(2, 1), pointset.Pt(1, 2), pointset.Pt(2, 3),
		}, res.Points.Points())
	})
}

func TestFindContour_OuterRingFromOutside(t *testing.T) {
	res, err := FindContour(ring(t), pointset.Pt(0, 2), East, config(pixbuf.Four))
	require.NoError(t, err)
	assert.Equal(t, Clockwise, res.Rotation)
	assert.Equal(t, pointset.Pt(1, 2), res.Points.At(0))
	assert.Equal(t, 8, res.Points.Len())
}

func TestFindContour_LowPolarity(t *testing.T) {
	// Tracing the dark centre of the ring as the target region.
	c := config(pixbuf.Four)
	c.Polarity = pixbuf.ColorLow
	res, err := FindContour(ring(t), pointset.Pt(2, 1), South, c)
	require.NoError(t, err)
	assert.Equal(t, []pointset.Point{pointset.Pt(2, 2)}, res.Points.Points())
	assert.Equal(t, Clockwise, res.Rotation)
	assert.Equal(t, pixbuf.ColorLow, res.Surrounded)
}

func TestFindContour_LineIsClosed(t *testing.T) {
	src := testutil.Art(t, pixbuf.Depth8, "###")
	res, err := FindContour(src, pointset.Pt(0, 0), East, config(pixbuf.Four))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Turns)
	assert.Equal(t, []pointset.Point{
		pointset.Pt(0, 0), pointset.Pt(1, 0), pointset.Pt(2, 0), pointset.Pt(1, 0),
	}, res.Points.Points())
}

func TestFindContour_RespectsOrigin(t *testing.T) {
	src := square(t)
	src.SetOrigin(image.Pt(1, 1))
	res, err := FindContour(src, pointset.Pt(0, -1), South, config(pixbuf.Four))
	require.NoError(t, err)
	assert.Equal(t, pointset.Pt(0, 0), res.Points.At(0))
	assert.Equal(t, image.Rect(0, 0, 2, 2), res.Points.Bounds())
	assert.Equal(t, image.Pt(1, 1), src.Origin())
}

func TestFindContour_ExistingBorderIsKept(t *testing.T) {
	src := square(t)
	// A target-valued border must not leak into the trace.
	src.AddBorder(2, 255)
	res, err := FindContour(src, pointset.Pt(1, 0), South, config(pixbuf.Eight))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Points.Len())
	assert.Equal(t, 2, src.Border())
}

func TestFindContour_ZeroThresholdHighPolarity(t *testing.T) {
	// Every pixel is a target; the walk must stay within the image.
	src := pixbuf.MustNew(3, 2, pixbuf.Depth8)
	c := config(pixbuf.Four)
	c.Threshold = 0
	res, err := FindContour(src, pointset.Pt(0, 0), East, c)
	require.NoError(t, err)
	assert.Equal(t, Clockwise, res.Rotation)
	assert.Equal(t, image.Rect(0, 0, 3, 2), res.Points.Bounds())
	assert.Equal(t, 0, src.Border())
}

func TestFindContour_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		dir  Direction
		want error
	}{
		{name: "empty", src: pixbuf.MustNew(0, 0, pixbuf.Depth8), dir: South, want: pixbuf.ErrEmptySource},
		{name: "24 bit", src: pixbuf.MustNew(2, 2, pixbuf.Depth24), dir: South, want: pixbuf.ErrUnsupportedDepth},
		{name: "bad direction", src: pixbuf.MustNew(2, 2, pixbuf.Depth8), dir: Direction(7), want: ErrInvalidDirection},
		{name: "no region", src: pixbuf.MustNew(3, 3, pixbuf.Depth8), dir: East, want: ErrNoContourFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindContour(tt.src, pointset.Pt(0, 0), tt.dir, DefaultConfig())
			require.ErrorIs(t, err, tt.want)
			var opErr *pixbuf.OpError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, "find contour", opErr.Op)
		})
	}

	src := square(t)
	_, err := FindContour(src, pointset.Pt(9, 9), South, DefaultConfig())
	require.ErrorIs(t, err, ErrNoContourFound)
	assert.Equal(t, 0, src.Border())

	_, err = New(Config{Polarity: pixbuf.ColorHigh, Connectivity: 5})
	require.ErrorIs(t, err, pixbuf.ErrInvalidConnectivity)
	_, err = New(Config{Connectivity: pixbuf.Four})
	require.ErrorIs(t, err, pixbuf.ErrInvalidPolarity)
}

type recordingObserver struct {
	stats []Stats
	errs  []error
}

func (r *recordingObserver) ObserveContour(stats Stats, err error) {
	r.stats = append(r.stats, stats)
	r.errs = append(r.errs, err)
}

func TestTracer_ObserverAndLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := &recordingObserver{}
	tr, err := New(config(pixbuf.Four), WithLogger(logger), WithObserver(obs))
	require.NoError(t, err)

	_, err = tr.FindContour(square(t), pointset.Pt(1, 0), South)
	require.NoError(t, err)
	_, err = tr.FindContour(square(t), pointset.Pt(0, 0), East)
	require.ErrorIs(t, err, ErrNoContourFound)

	require.Len(t, obs.stats, 2)
	assert.Equal(t, 4, obs.stats[0].Points)
	assert.Equal(t, Clockwise, obs.stats[0].Rotation)
	assert.Positive(t, obs.stats[0].Iterations)
	require.NoError(t, obs.errs[0])
	require.ErrorIs(t, obs.errs[1], ErrNoContourFound)

	assert.Contains(t, logs.String(), "Tracing contour")
	assert.Contains(t, logs.String(), "Contour traced")
}

func TestDirection(t *testing.T) {
	assert.Equal(t, East, North.Right())
	assert.Equal(t, West, North.Left())
	assert.Equal(t, South, North.Opposite())
	assert.Equal(t, North, West.Right())
	assert.Equal(t, pointset.Pt(1, 0), North.Step(pointset.Pt(1, 1)))
	assert.Equal(t, pointset.Pt(0, 1), West.Step(pointset.Pt(1, 1)))
	assert.False(t, Direction(-1).Valid())

	d, err := ParseDirection(" South ")
	require.NoError(t, err)
	assert.Equal(t, South, d)
	d, err = ParseDirection("w")
	require.NoError(t, err)
	assert.Equal(t, West, d)
	_, err = ParseDirection("up")
	assert.ErrorIs(t, err, ErrInvalidDirection)

	assert.Equal(t, "clockwise", Clockwise.String())
	assert.Equal(t, "unclassified", Unclassified.String())
}

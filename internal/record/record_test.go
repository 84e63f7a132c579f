package record

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)

func TestBuildAppliesDefaults(t *testing.T) {
	rec, err := Build(Draft{}, "", fixedNow)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, DefaultUserID, rec.UserID)
	assert.Equal(t, fixedNow.UnixMilli(), rec.EndTime)
	assert.Equal(t, fixedNow.UnixMilli()-300000, rec.StartTime)
	assert.Equal(t, int64(300), rec.Duration)
	assert.Equal(t, ColorBrown, rec.Color)
	assert.Equal(t, StatusNormal, rec.Status)
	assert.Equal(t, ShapeBanana, rec.Shape)
	assert.Equal(t, AmountModerate, rec.Amount)
	assert.Equal(t, "", rec.Note)
	assert.True(t, rec.IsCompleted)
	assert.Equal(t, fixedNow.UnixMilli(), rec.CreatedAt)
}

func TestBuildRespectsExplicitFalseCompletion(t *testing.T) {
	rec, err := Build(Draft{IsCompleted: ptr(false)}, "u1", fixedNow)
	require.NoError(t, err)
	assert.False(t, rec.IsCompleted)
	assert.Equal(t, "u1", rec.UserID)
}

func TestDeriveKeepsDurationConsistent(t *testing.T) {
	now := fixedNow.UnixMilli()
	cases := []struct {
		name     string
		start    *int64
		end      *int64
		duration *int64
	}{
		{name: "none"},
		{name: "start and end", start: ptr(now - 61_400), end: ptr(now)},
		{name: "start end and stale duration", start: ptr(now - 10_600), end: ptr(now), duration: ptr(int64(999))},
		{name: "end and duration", end: ptr(now - 5000), duration: ptr(int64(42))},
		{name: "start and duration", start: ptr(now - 90_000), duration: ptr(int64(30))},
		{name: "only start", start: ptr(now - 12_345)},
		{name: "only end", end: ptr(now - 1000)},
		{name: "only duration", duration: ptr(int64(75))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, duration, err := Derive(tc.start, tc.end, tc.duration, fixedNow)
			require.NoError(t, err)
			assert.LessOrEqual(t, start, end)
			assert.Equal(t, DurationBetween(start, end), duration)
		})
	}
}

func TestDeriveEndAndDuration(t *testing.T) {
	end := fixedNow.UnixMilli()
	start, gotEnd, duration, err := Derive(nil, &end, ptr(int64(120)), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, end-120_000, start)
	assert.Equal(t, end, gotEnd)
	assert.Equal(t, int64(120), duration)
}

func TestDeriveRoundsToNearestSecond(t *testing.T) {
	_, _, duration, err := Derive(ptr(int64(0)), ptr(int64(1500)), nil, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(2), duration)

	_, _, duration, err = Derive(ptr(int64(0)), ptr(int64(1499)), nil, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), duration)
}

func TestDeriveRejectsInvertedRange(t *testing.T) {
	_, _, _, err := Derive(ptr(int64(2000)), ptr(int64(1000)), nil, fixedNow)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, _, _, err = Derive(nil, nil, ptr(int64(-1)), fixedNow)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestBuildRejectsUnknownTags(t *testing.T) {
	_, err := Build(Draft{Color: "purple"}, "u1", fixedNow)
	assert.ErrorIs(t, err, ErrInvalidColor)
	assert.True(t, IsValidation(err))

	_, err = Build(Draft{Shape: "cube"}, "u1", fixedNow)
	assert.ErrorIs(t, err, ErrInvalidShape)

	rec, err := Build(Draft{Color: " Green ", Status: "DIARRHEA"}, "u1", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, ColorGreen, rec.Color)
	assert.Equal(t, StatusDiarrhea, rec.Status)
}

func TestMergePreservesIdentity(t *testing.T) {
	original, err := Build(Draft{}, "owner", fixedNow)
	require.NoError(t, err)

	merged, err := Merge(original, Patch{Note: ptr("hello"), Color: ptr("black")})
	require.NoError(t, err)

	assert.Equal(t, original.ID, merged.ID)
	assert.Equal(t, "owner", merged.UserID)
	assert.Equal(t, "hello", merged.Note)
	assert.Equal(t, ColorBlack, merged.Color)
	assert.Equal(t, original.Duration, merged.Duration)
	assert.Equal(t, "", original.Note)
}

func TestMergeRederivesTimes(t *testing.T) {
	original, err := Build(Draft{}, "owner", fixedNow)
	require.NoError(t, err)

	merged, err := Merge(original, Patch{StartTime: ptr(original.EndTime - 30_000)})
	require.NoError(t, err)
	assert.Equal(t, int64(30), merged.Duration)

	merged, err = Merge(original, Patch{Duration: ptr(int64(10))})
	require.NoError(t, err)
	assert.Equal(t, original.EndTime-10_000, merged.StartTime)

	_, err = Merge(original, Patch{StartTime: ptr(original.EndTime + 1)})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestMergeRejectsEmptyTag(t *testing.T) {
	original, err := Build(Draft{}, "owner", fixedNow)
	require.NoError(t, err)
	_, err = Merge(original, Patch{Amount: ptr("")})
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestValidate(t *testing.T) {
	rec, err := Build(Draft{}, "owner", fixedNow)
	require.NoError(t, err)
	require.NoError(t, rec.Validate())

	broken := rec
	broken.StartTime = broken.EndTime + 1
	assert.ErrorIs(t, broken.Validate(), ErrInvalidTimeRange)

	broken = rec
	broken.ID = ""
	assert.Error(t, broken.Validate())

	broken = rec
	broken.Color = "teal"
	assert.ErrorIs(t, broken.Validate(), ErrInvalidColor)
}

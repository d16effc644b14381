package adaptor_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uxsignals/tracklight/pkg/tracklight/adaptor"
	"github.com/uxsignals/tracklight/pkg/tracklight/model"
)

func TestTrimName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "shorter than max", input: "app_open", max: 40, want: "app_open"},
		{name: "exactly max", input: "abcd", max: 4, want: "abcd"},
		{name: "truncated", input: "a_very_long_event_name", max: 6, want: "a_very"},
		{name: "empty", input: "", max: 10, want: ""},
		{name: "multibyte kept whole", input: "café_menu", max: 5, want: "café"},
		{name: "multibyte not split", input: "café_menu", max: 4, want: "caf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adaptor.TrimName(tt.input, tt.max))
		})
	}
}

func TestConsoleAdaptor_Trimming(t *testing.T) {
	console := adaptor.NewConsoleAdaptor(nil)

	longEvent := model.NewEvent(strings.Repeat("e", 60))
	trimmedEvent := console.TrimEvent(longEvent)
	assert.Len(t, trimmedEvent.Name, 40)

	longProp := model.NewProperty(strings.Repeat("p", 60))
	trimmedProp := console.TrimProperty(longProp)
	assert.Len(t, trimmedProp.Name, 24)
}

func TestConsoleAdaptor_TrimmingIdempotent(t *testing.T) {
	console := adaptor.NewConsoleAdaptor(nil)

	once := console.TrimEvent(model.NewEvent(strings.Repeat("e", 60)))
	twice := console.TrimEvent(model.NewEvent(once.Name))

	assert.Equal(t, once, twice)
}

func TestConsoleAdaptor_NeverFails(t *testing.T) {
	console := adaptor.NewConsoleAdaptor(nil)

	require.NoError(t, console.Start(context.Background(), adaptor.StartOptions{}))
	assert.NoError(t, console.Track(model.TrimmedEvent{Name: "app_open"}, model.Params{"k": "v"}))
	assert.NoError(t, console.Set(model.TrimmedProperty{Name: "tier"}, "gold"))
	assert.NoError(t, console.Unset(model.TrimmedProperty{Name: "tier"}))
}

func TestRecorderAdaptor_RecordsInOrder(t *testing.T) {
	rec := adaptor.NewRecorderAdaptor("rec")
	require.NoError(t, rec.Start(context.Background(), adaptor.StartOptions{}))

	require.NoError(t, rec.Track(model.TrimmedEvent{Name: "first"}, nil))
	require.NoError(t, rec.Track(model.TrimmedEvent{Name: "second"}, model.Params{"n": 2}))

	assert.Equal(t, []string{"first", "second"}, rec.EventNames())
	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, model.Params{"n": 2}, events[1].Params)
}

func TestRecorderAdaptor_StartErr(t *testing.T) {
	rec := adaptor.NewRecorderAdaptor("rec")
	rec.StartErr = errors.New("no network")

	err := rec.Start(context.Background(), adaptor.StartOptions{})

	assert.Error(t, err)
	assert.False(t, rec.Started())
}

func TestRecorderAdaptor_StartDelayInterruptible(t *testing.T) {
	rec := adaptor.NewRecorderAdaptor("rec")
	rec.StartDelay = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rec.Start(ctx, adaptor.StartOptions{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, rec.Started())
}

func TestRecorderAdaptor_UserIDCapabilities(t *testing.T) {
	rec := adaptor.NewRecorderAdaptor("rec")

	_, ok := rec.UserID()
	assert.False(t, ok)

	rec.SetUserID("user-42")
	id, ok := rec.UserID()
	require.True(t, ok)
	assert.Equal(t, "user-42", id)

	// Empty id clears.
	rec.SetUserID("")
	_, ok = rec.UserID()
	assert.False(t, ok)
}

func TestRecorderAdaptor_LastPropertyValue(t *testing.T) {
	rec := adaptor.NewRecorderAdaptor("rec")

	require.NoError(t, rec.Set(model.TrimmedProperty{Name: "tier"}, "silver"))
	require.NoError(t, rec.Set(model.TrimmedProperty{Name: "tier"}, "gold"))

	value, ok := rec.LastPropertyValue("tier")
	require.True(t, ok)
	assert.Equal(t, "gold", value)

	require.NoError(t, rec.Unset(model.TrimmedProperty{Name: "tier"}))
	_, ok = rec.LastPropertyValue("tier")
	assert.False(t, ok)
}

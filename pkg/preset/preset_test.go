package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BYTE-6D65/studyclock/pkg/kvstore"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	require.Len(t, d, 4)
	assert.Equal(t, Preset{Label: "1분", Seconds: 60}, d[0])
	assert.Equal(t, Preset{Label: "1시간", Seconds: 3600}, d[3])

	d[0].Seconds = 1
	assert.Equal(t, 60, Defaults()[0].Seconds, "Defaults must return a fresh copy")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		h, m, s int
		want    int
		wantErr error
	}{
		{name: "plain", label: "집중", h: 0, m: 25, s: 0, want: 1500},
		{name: "caps minutes and seconds", label: "cap", h: 1, m: 75, s: 90, want: 3600 + 59*60 + 59},
		{name: "negative fields", label: "neg", h: -1, m: -5, s: 30, want: 30},
		{name: "hours uncapped", label: "long", h: 120, want: 120 * 3600},
		{name: "empty label", label: "  ", m: 5, wantErr: ErrEmptyLabel},
		{name: "zero total", label: "zero", wantErr: ErrNoDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.label, tt.h, tt.m, tt.s)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Seconds)
		})
	}
}

func TestSplit(t *testing.T) {
	h, m, s := Preset{Label: "x", Seconds: 3725}.Split()
	assert.Equal(t, []int{1, 2, 5}, []int{h, m, s})
}

func TestLoad_Fallbacks(t *testing.T) {
	store := kvstore.NewMemory()

	got, err := Load(store)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got, "missing key yields defaults")

	require.NoError(t, store.Set(KeyPresets, "{not json"))
	got, err = Load(store)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got, "malformed JSON yields defaults")

	require.NoError(t, store.Set(KeyPresets, "null"))
	got, err = Load(store)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestLoad_DropsInvalid(t *testing.T) {
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(KeyPresets,
		`[{"label":"ok","seconds":90},{"label":"","seconds":60},{"label":"zero","seconds":0}]`))

	got, err := Load(store)
	require.NoError(t, err)
	assert.Equal(t, []Preset{{Label: "ok", Seconds: 90}}, got)
}

func TestLoad_EmptyListIsKept(t *testing.T) {
	store := kvstore.NewMemory()
	require.NoError(t, Save(store, nil))

	got, err := Load(store)
	require.NoError(t, err)
	assert.Empty(t, got, "a saved empty list is a user choice, not missing data")
}

func TestLoad_StoreError(t *testing.T) {
	store := kvstore.NewMemory()
	require.NoError(t, store.Close())

	got, err := Load(store)
	assert.ErrorIs(t, err, kvstore.ErrClosed)
	assert.Equal(t, Defaults(), got)
}

func TestAddRemoveReset(t *testing.T) {
	store := kvstore.NewMemory()

	got, err := Add(store, Preset{Label: NewLabel, Seconds: NewSeconds})
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, NewLabel, got[4].Label)

	_, err = Add(store, Preset{Label: "", Seconds: 10})
	assert.ErrorIs(t, err, ErrEmptyLabel)
	_, err = Add(store, Preset{Label: "x"})
	assert.ErrorIs(t, err, ErrNoDuration)

	got, err = Remove(store, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "10분", got[0].Label)

	_, err = Remove(store, 10)
	assert.ErrorIs(t, err, ErrIndex)

	reloaded, err := Load(store)
	require.NoError(t, err)
	assert.Equal(t, got, reloaded)

	got, err = ResetDefaults(store)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestSound(t *testing.T) {
	store := kvstore.NewMemory()
	assert.True(t, LoadSound(store), "sound defaults to enabled")

	require.NoError(t, SaveSound(store, false))
	assert.False(t, LoadSound(store))
	v, _, _ := store.Get(KeySound)
	assert.Equal(t, "false", v)

	require.NoError(t, SaveSound(store, true))
	assert.True(t, LoadSound(store))

	require.NoError(t, store.Set(KeySound, "garbage"))
	assert.True(t, LoadSound(store), "only the literal false disables sound")
}

func TestTheme(t *testing.T) {
	store := kvstore.NewMemory()
	assert.Equal(t, ThemeDark, LoadTheme(store))

	require.NoError(t, SaveTheme(store, ThemeLight))
	assert.Equal(t, ThemeLight, LoadTheme(store))

	require.NoError(t, SaveTheme(store, "neon"))
	assert.Equal(t, ThemeDark, LoadTheme(store))
}

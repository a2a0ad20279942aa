package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenresValue(t *testing.T) {
	v, err := Genres{"Jazz", "Rock n Roll", "R&B"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "Jazz,Rock n Roll,R&B", v)

	v, err = Genres{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestGenresScan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want Genres
	}{
		{name: "string", src: "Jazz,Reggae", want: Genres{"Jazz", "Reggae"}},
		{name: "bytes", src: []byte("Folk"), want: Genres{"Folk"}},
		{name: "nil", src: nil, want: Genres{}},
		{name: "empty", src: "", want: Genres{}},
		{name: "stray separators", src: ",Pop,,", want: Genres{"Pop"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var g Genres
			require.NoError(t, g.Scan(tc.src))
			assert.Equal(t, tc.want, g)
		})
	}

	var g Genres
	assert.Error(t, g.Scan(42))
}

func TestGenresContains(t *testing.T) {
	g := Genres{"Blues", "Soul"}
	assert.True(t, g.Contains("Soul"))
	assert.False(t, g.Contains("soul"))
}

func TestPartitionShows(t *testing.T) {
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	shows := []ShowListing{
		{ID: 1, StartTime: now.Add(-48 * time.Hour)},
		{ID: 2, StartTime: now.Add(time.Hour)},
		{ID: 3, StartTime: now},
		{ID: 4, StartTime: now.Add(-time.Minute)},
	}
	past, upcoming := PartitionShows(shows, now)
	require.Len(t, past, 2)
	require.Len(t, upcoming, 1)
	assert.Equal(t, uint(1), past[0].ID)
	assert.Equal(t, uint(4), past[1].ID)
	assert.Equal(t, uint(2), upcoming[0].ID)

	past, upcoming = PartitionShows(nil, now)
	assert.NotNil(t, past)
	assert.NotNil(t, upcoming)
}

func TestConfigValidate(t *testing.T) {
	conf, err := GetDefaultConfig()
	require.NoError(t, err)
	assert.NoError(t, conf.Validate())
	assert.Equal(t, 50*time.Second, conf.Cache.TTL())

	pg := *conf
	pg.Database.Driver = DriverPostgres
	assert.Error(t, pg.Validate(), "postgres needs a DSN")
	pg.Database.DSN = "postgres://fyyur@localhost/fyyur"
	assert.NoError(t, pg.Validate())

	rd := *conf
	rd.Cache.Backend = CacheRedis
	assert.Error(t, rd.Validate(), "redis needs an address")

	bad := *conf
	bad.Database.Driver = "mysql"
	assert.Error(t, bad.Validate())
}

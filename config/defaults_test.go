package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	SetDefaults(v)

	var conf Configuration
	require.NoError(t, v.Unmarshal(&conf))

	assert.Equal(t, uint32(5001), conf.App.Port)
	assert.Equal(t, "/api", conf.App.BasePath)
	assert.Equal(t, "rewear", conf.MongoDB.Database)
	assert.Equal(t, MediaDriverCloudinary, conf.Media.Driver)
	assert.Equal(t, 800, conf.Media.MaxDimension)
	assert.Equal(t, 40_000_000, conf.Media.MaxPixels)
	assert.Equal(t, 120, conf.RateLimit.Limit)
	assert.Equal(t, []string{"http://localhost:5173"}, conf.Cors.AllowOrigins)
	assert.Empty(t, conf.Redis.Host)
}

func TestSetDefaults_OverriddenBySet(t *testing.T) {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	SetDefaults(v)
	v.Set("MEDIA__DRIVER", MediaDriverBucket)
	v.Set("APP__PORT", 8080)

	var conf Configuration
	require.NoError(t, v.Unmarshal(&conf))

	assert.Equal(t, MediaDriverBucket, conf.Media.Driver)
	assert.Equal(t, uint32(8080), conf.App.Port)
}

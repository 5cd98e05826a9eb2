package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-sec/gohttp/config"
)

func TestEnumRejectsUnknownValue(t *testing.T) {
	c := config.New()
	err := c.Set(config.OptURIEncodeMode, "bogus")
	require.Error(t, err)
	var invalid *config.InvalidOption
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "bogus", invalid.Value)
}

func TestEnumAcceptsDeclaredChoice(t *testing.T) {
	c := config.New()
	require.NoError(t, c.Set(config.OptURIEncodeMode, "hex-random"))
	assert.Equal(t, "hex-random", c.GetString(config.OptURIEncodeMode))
}

func TestBoolTruthiness(t *testing.T) {
	c := config.New()
	require.NoError(t, c.Set(config.OptPartial, "yes"))
	assert.True(t, c.GetBool(config.OptPartial))

	require.NoError(t, c.Set(config.OptPartial, "Y"))
	assert.True(t, c.GetBool(config.OptPartial))

	require.NoError(t, c.Set(config.OptPartial, "1"))
	assert.True(t, c.GetBool(config.OptPartial))

	require.NoError(t, c.Set(config.OptPartial, "no"))
	assert.False(t, c.GetBool(config.OptPartial))
}

func TestIntCoercionInvalidYieldsZero(t *testing.T) {
	c := config.New()
	require.NoError(t, c.Set(config.OptChunkedSize, "not-a-number"))
	assert.Equal(t, 0, c.GetInt(config.OptChunkedSize))

	require.NoError(t, c.Set(config.OptChunkedSize, "42"))
	assert.Equal(t, 42, c.GetInt(config.OptChunkedSize))
}

func TestUnknownNameDefaultsToString(t *testing.T) {
	c := config.New()
	require.NoError(t, c.Set("some_future_option", "value"))
	assert.Equal(t, "value", c.GetString("some_future_option"))
}

func TestDefaults(t *testing.T) {
	c := config.New()
	assert.Equal(t, 1048576, c.GetInt(config.OptReadMaxData))
	assert.False(t, c.GetBool(config.OptPartial))
	assert.True(t, c.GetBool(config.OptDigestAuthIIS))
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	base := config.New()
	require.NoError(t, base.Set(config.OptAgent, "base-agent"))

	view := base.Merge(map[string]string{config.OptAgent: "override-agent"})
	assert.Equal(t, "override-agent", view.GetString(config.OptAgent))
	assert.Equal(t, "base-agent", base.GetString(config.OptAgent))
}

package rlimits

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKinds_AllSupportedOnLinux(t *testing.T) {
	for _, k := range Kinds() {
		assert.True(t, k.Supported, k.Name)
	}
}

func TestSetRlimits_RaiseCoreSoftToHard(t *testing.T) {
	before, err := GetRlimits()
	require.NoError(t, err)
	core, _ := Index("core")
	hard := before[core].Hard

	values := Missing()
	if IsUnlimited(hard) {
		values[core] = math.Inf(1)
	} else {
		values[core] = float64(hard)
	}
	require.NoError(t, SetRlimits(values))

	after, err := GetRlimits()
	require.NoError(t, err)
	assert.Equal(t, hard, after[core].Soft)
	assert.Equal(t, hard, after[core].Hard)

	// untouched kinds keep their values
	for i := range after {
		if i != core {
			assert.Equal(t, before[i], after[i], after[i].Name)
		}
	}
}

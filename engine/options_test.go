package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptionDefaults(t *testing.T) {
	o := NewOptions()
	assert.Equal(t, 4, o.Bitwidth())
	assert.Equal(t, 0, o.SkolemDepth())
	assert.Equal(t, 3, o.Sharing())
	assert.Equal(t, TwosComplement, o.IntEncoding())
	assert.False(t, o.LogTranslation())
	assert.False(t, o.TrackFormulas())
	assert.Zero(t, o.Timeout())
	assert.NotNil(t, o.Solver())
	assert.NotNil(t, o.Reporter())
}

func TestOptionValidation(t *testing.T) {
	o := NewOptions()
	assert.Panics(t, func() { o.SetBitwidth(0) })
	assert.Panics(t, func() { o.SetBitwidth(33) })
	assert.Panics(t, func() { o.SetSkolemDepth(-2) })
	assert.Panics(t, func() { o.SetSharing(0) })
	assert.Panics(t, func() { o.SetSolver(nil) })
	assert.Panics(t, func() { o.SetReporter(nil) })
	assert.Panics(t, func() { o.SetTimeout(-time.Second) })
	assert.Panics(t, func() { o.SetIntEncoding(IntEncoding(7)) })
}

func TestOptionSetters(t *testing.T) {
	o := NewOptions().
		SetBitwidth(8).
		SetSkolemDepth(2).
		SetSharing(5).
		SetTimeout(time.Minute).
		SetLogTranslation(true)
	assert.Equal(t, 8, o.Bitwidth())
	assert.Equal(t, 2, o.SkolemDepth())
	assert.Equal(t, 5, o.Sharing())
	assert.Equal(t, time.Minute, o.Timeout())
	assert.True(t, o.LogTranslation())

	// Tracking formulas implies translation logging.
	o2 := NewOptions().SetTrackFormulas(true)
	assert.True(t, o2.LogTranslation())

	// Clone is independent.
	c := o.Clone()
	c.SetBitwidth(16)
	assert.Equal(t, 8, o.Bitwidth())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSign(t *testing.T) {
	p := &Publisher{ID: 500, Token: "s3cret-token"}

	sign := p.GenerateSign("1714500000")
	assert.Len(t, sign, 64, "sign is a hex-encoded sha256 digest")

	// Deterministic: the wire protocol requires the same inputs to produce
	// the same signature.
	assert.Equal(t, sign, p.GenerateSign("1714500000"))

	// Any input change produces a different signature.
	assert.NotEqual(t, sign, p.GenerateSign("1714500001"))
	other := &Publisher{ID: 501, Token: "s3cret-token"}
	assert.NotEqual(t, sign, other.GenerateSign("1714500000"))
	rekeyed := &Publisher{ID: 500, Token: "different-token"}
	assert.NotEqual(t, sign, rekeyed.GenerateSign("1714500000"))
}

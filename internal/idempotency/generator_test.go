package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyDeterministic(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopeFreeCheckout, map[string]interface{}{
		"user_id":   "user_1",
		"plan_type": "monthly_basic",
	})
	b := g.GenerateKey(ScopeFreeCheckout, map[string]interface{}{
		"plan_type": "monthly_basic",
		"user_id":   "user_1",
	})
	assert.Equal(t, a, b, "key must not depend on map iteration order")
	assert.Len(t, a, 64)
}

func TestGenerateKeyVariesByScopeAndParams(t *testing.T) {
	g := NewGenerator()
	params := map[string]interface{}{"user_id": "user_1"}

	assert.NotEqual(t,
		g.GenerateKey(ScopeFreeCheckout, params),
		g.GenerateKey(ScopeCheckout, params))
	assert.NotEqual(t,
		g.GenerateKey(ScopeCheckout, params),
		g.GenerateKey(ScopeCheckout, map[string]interface{}{"user_id": "user_2"}))
}

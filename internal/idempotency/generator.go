package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Scope represents the domain an idempotency key belongs to.
type Scope string

const (
	ScopeCheckout     Scope = "checkout"
	ScopeFreeCheckout Scope = "free_checkout"
	ScopeNotification Scope = "notification"
)

// Generator produces deterministic idempotency keys from a scope and a
// parameter set. The same scope and params always yield the same key.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateKey builds "scope:key1=value1:key2=value2" over sorted keys and
// returns its hex-encoded sha256.
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

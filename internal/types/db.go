package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LockScope represents the scope of a database advisory lock
type LockScope string

const (
	// LockScopeAllowance serializes allowance balance mutations for one subscription.
	LockScopeAllowance LockScope = "allowance"
	// LockScopeCheckout serializes activation of one checkout event.
	LockScopeCheckout LockScope = "checkout"
)

// GenerateLockKey generates a lock key from a scope and parameters. The key
// is a deterministic string that Postgres will hash internally, in the same
// format the idempotency generator uses before hashing.
func GenerateLockKey(scope LockScope, params map[string]interface{}) string {
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
	return b.String()
}

// LockRequest describes an advisory lock acquisition.
type LockRequest struct {
	Key string
	// Timeout of nil means the 30s default; zero or negative means fail-fast.
	Timeout *time.Duration
}

const defaultLockTimeout = 30 * time.Second

func (r LockRequest) GetTimeout() time.Duration {
	if r.Timeout == nil {
		return defaultLockTimeout
	}
	return *r.Timeout
}

// TableName represents a database table name
type TableName string

const (
	TableNameLetters       TableName = "letters"
	TableNameSubscriptions TableName = "subscriptions"
	TableNameAuditLogs     TableName = "audit_logs"
	TableNameWebhookEvents TableName = "webhook_events"
	TableNameCoupons       TableName = "coupons"
	TableNameCommissions   TableName = "commissions"
	TableNameUsers         TableName = "users"
)

package commission

import "context"

// PolicyRepository defines persistence operations for the commission policy.
// There is at most one active policy row; callers fall back to
// DefaultPolicy when FindActive reports not-found.
type PolicyRepository interface {
	FindActive(ctx context.Context) (*CommissionPolicy, error)
	Save(ctx context.Context, policy *CommissionPolicy) error
}

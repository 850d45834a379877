package filter

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// markupSanitizer returns the shared policy for user-generated markup.
func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		policy.RequireNoFollowOnLinks(true)
		markupPolicy = policy
	})
	return markupPolicy
}

// SanitizeString strips unsafe markup from s using the shared UGC policy.
func SanitizeString(s string) string {
	if s == "" {
		return s
	}
	return markupSanitizer().Sanitize(s)
}

// NewSanitize returns a variable filter that passes every string leaf
// through policy. A nil policy selects the shared UGC policy, which keeps
// formatting markup and drops scripts, handlers and unsafe URLs.
func NewSanitize(policy *bluemonday.Policy) *VariableFilter {
	if policy == nil {
		return NewVariableFilter("sanitize", StringLeaves(SanitizeString))
	}
	return NewVariableFilter("sanitize", StringLeaves(policy.Sanitize))
}

// NewStrip returns a variable filter that removes all markup from string leaves.
func NewStrip() *VariableFilter {
	policy := bluemonday.StrictPolicy()
	return NewVariableFilter("strip", StringLeaves(policy.Sanitize))
}

package sim

import "fmt"

// StallPolicy decides what a worker does when path search finds no route to its target.
type StallPolicy string

const (
	// StallPolicyFail abandons the order: it is marked failed and the worker becomes idle.
	StallPolicyFail StallPolicy = "fail"

	// StallPolicyStall keeps the worker busy on the order forever without moving.
	StallPolicyStall StallPolicy = "stall"
)

// validStallPolicies maps accepted names to policies. Empty means the default.
var validStallPolicies = map[string]StallPolicy{
	"":      StallPolicyFail,
	"fail":  StallPolicyFail,
	"stall": StallPolicyStall,
}

// ParseStallPolicy resolves a policy name.
func ParseStallPolicy(name string) (StallPolicy, error) {
	p, ok := validStallPolicies[name]
	if !ok {
		return "", fmt.Errorf("unknown stall policy %q; valid options: fail, stall", name)
	}
	return p, nil
}

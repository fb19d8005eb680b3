package wait

import "time"

// Condition is a predicate re-evaluated on every poll.
type Condition interface {
	IsSatisfied() bool
}

// ConditionFunc adapts a function to Condition.
type ConditionFunc func() bool

func (f ConditionFunc) IsSatisfied() bool { return f() }

// BudgetedCondition runs its own retry loop within a time budget. Under
// RetryUntilDeadline a Waiter hands such a condition the whole timeout in a
// single call instead of polling it.
type BudgetedCondition interface {
	Condition
	SatisfiedWithin(budget time.Duration) bool
}

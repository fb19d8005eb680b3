// Package condition compiles textual wait conditions such as
//
//	screen.type == "HomeActivity" && exists("Welcome")
//
// into predicates over the current UI state.
package condition

import (
	"errors"
	"fmt"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	"github.com/mj1618/uisync/internal/wait"
	"go.uber.org/zap"
)

// ErrEmptyExpression is returned by Compile for a blank expression.
var ErrEmptyExpression = errors.New("condition: expression must not be empty")

// Condition is a compiled boolean expression.
type Condition struct {
	expression string
	program    *exprvm.Program
}

// Compile checks expression against the variables an Env provides and
// requires it to produce a bool.
func Compile(expression string) (*Condition, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(Env{}.vars()),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("condition: compile %q: %w", expression, err)
	}
	return &Condition{expression: expression, program: program}, nil
}

func (c *Condition) String() string { return c.expression }

// Evaluate runs the condition against env.
func (c *Condition) Evaluate(env Env) (bool, error) {
	out, err := exprlang.Run(c.program, env.vars())
	if err != nil {
		return false, fmt.Errorf("condition: evaluate %q: %w", c.expression, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition: %q produced %T, not bool", c.expression, out)
	}
	return b, nil
}

// EnvSource captures the current UI state on demand.
type EnvSource interface {
	Env() Env
}

// EnvFunc adapts a function to EnvSource.
type EnvFunc func() Env

func (f EnvFunc) Env() Env { return f() }

// Bind returns a wait.Condition that captures a fresh Env from src on every
// poll. Evaluation errors count as not satisfied.
func (c *Condition) Bind(src EnvSource, logger *zap.Logger) wait.Condition {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("condition")
	return wait.ConditionFunc(func() bool {
		ok, err := c.Evaluate(src.Env())
		if err != nil {
			logger.Debug("evaluation failed", zap.String("expression", c.expression), zap.Error(err))
			return false
		}
		return ok
	})
}

// Cache holds compiled conditions by expression text. It is safe for
// concurrent use.
type Cache struct {
	mu         sync.Mutex
	conditions map[string]*Condition
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{conditions: map[string]*Condition{}}
}

// Compile returns the cached condition for expression, compiling it on
// first use. Failed compilations are not cached.
func (c *Cache) Compile(expression string) (*Condition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cond, ok := c.conditions[expression]; ok {
		return cond, nil
	}
	cond, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	c.conditions[expression] = cond
	return cond, nil
}

// Len returns the number of cached conditions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conditions)
}

package promotion

import (
	"sync"

	"github.com/google/cel-go/cel"

	"negoce/internal/core/apperror"
)

// Condition expressions let management attach extra eligibility rules to a
// promotion without a code change, e.g.
//
//	quantity >= 24.0 && amount >= 50000.0
//
// Available variables: quantity (double, in the requested unit), amount
// (double, gross line amount), customer_id (string, empty for anonymous
// sales). The expression must produce a bool.

var celEnvOnce = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("quantity", cel.DoubleType),
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("customer_id", cel.StringType),
	)
})

// programCache memoizes compiled programs keyed by expression source.
// Promotions are reloaded from storage on every evaluation; compiling once
// per distinct expression keeps evaluation cheap.
var programCache = struct {
	mu       sync.RWMutex
	programs map[string]cel.Program
}{programs: make(map[string]cel.Program)}

func compileCondition(expr string) (cel.Program, error) {
	programCache.mu.RLock()
	prg, ok := programCache.programs[expr]
	programCache.mu.RUnlock()
	if ok {
		return prg, nil
	}

	env, err := celEnvOnce()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewInvalidPromotionConfig("condition does not compile").
			WithDetail("condition", expr).
			WithCause(issues.Err())
	}
	if !ast.OutputType().IsEquivalentType(cel.BoolType) {
		return nil, apperror.NewInvalidPromotionConfig("condition must evaluate to a boolean").
			WithDetail("condition", expr)
	}

	prg, err = env.Program(ast)
	if err != nil {
		return nil, apperror.NewInvalidPromotionConfig("condition cannot be planned").
			WithDetail("condition", expr).
			WithCause(err)
	}

	programCache.mu.Lock()
	programCache.programs[expr] = prg
	programCache.mu.Unlock()

	return prg, nil
}

// ValidateCondition compiles the expression, surfacing configuration errors
// at creation time rather than at evaluation time.
func ValidateCondition(expr string) error {
	_, err := compileCondition(expr)
	return err
}

// evalCondition runs the expression against the evaluation input.
func evalCondition(expr string, quantity, amount float64, customerID string) (bool, error) {
	prg, err := compileCondition(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]any{
		"quantity":    quantity,
		"amount":      amount,
		"customer_id": customerID,
	})
	if err != nil {
		return false, apperror.NewInvalidPromotionConfig("condition evaluation failed").
			WithDetail("condition", expr).
			WithCause(err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, apperror.NewInvalidPromotionConfig("condition returned a non-boolean").
			WithDetail("condition", expr)
	}
	return result, nil
}

package vm

import (
	"fmt"
	"math"

	"github.com/jweissman/aua-sub000/internal/ir"
)

// evalSend dispatches a Send node's binary operator. Arithmetic and
// comparison promote Int to Float whenever either operand is Float (the
// resolved Open Question in SPEC_FULL.md §4: Aua has no separate
// numeric-tower coercion rules beyond this single promotion), string
// concatenation overloads + for two Strs, and && / || short-circuit on
// the left operand's truthiness before evaluating the right.
func (vm *VM) evalSend(n *ir.Send, env *Environment) (Value, error) {
	if n.Op == "&&" || n.Op == "||" {
		left, err := vm.Eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if n.Op == "&&" && !Truthy(left) {
			return left, nil
		}
		if n.Op == "||" && Truthy(left) {
			return left, nil
		}
		return vm.Eval(n.Right, env)
	}

	left, err := vm.Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := vm.Eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinaryOp(n.Op, Unwrap(left), Unwrap(right))
}

func applyBinaryOp(op string, left, right Value) (Value, error) {
	if op == "+" {
		if ls, ok := left.(Str); ok {
			if rs, ok := right.(Str); ok {
				return ls + rs, nil
			}
		}
	}

	if op == "==" {
		return Bool(valuesEqual(left, right)), nil
	}
	if op == "!=" {
		return Bool(!valuesEqual(left, right)), nil
	}

	lf, lIsNum := asFloat(left)
	rf, rIsNum := asFloat(right)
	if !lIsNum || !rIsNum {
		return nil, fmt.Errorf("type_error: operator %q is not defined for %s and %s", op, left.TypeName(), right.TypeName())
	}

	_, lFloat := left.(Float)
	_, rFloat := right.(Float)
	bothInt := !lFloat && !rFloat

	switch op {
	case "+":
		if bothInt {
			return left.(Int) + right.(Int), nil
		}
		return Float(lf + rf), nil
	case "-":
		if bothInt {
			return left.(Int) - right.(Int), nil
		}
		return Float(lf - rf), nil
	case "*":
		if bothInt {
			return left.(Int) * right.(Int), nil
		}
		return Float(lf * rf), nil
	case "/":
		if rf == 0 {
			return nil, fmt.Errorf("value_error: division by zero")
		}
		if bothInt {
			return Float(lf / rf), nil
		}
		return Float(lf / rf), nil
	case "%":
		if !bothInt {
			return nil, fmt.Errorf("type_error: %% requires Int operands")
		}
		ri := right.(Int)
		if ri == 0 {
			return nil, fmt.Errorf("value_error: division by zero")
		}
		return left.(Int) % ri, nil
	case "**":
		if bothInt {
			exp := int64(right.(Int))
			if exp < 0 {
				return Float(math.Pow(lf, rf)), nil
			}
			return intPow(left.(Int), exp), nil
		}
		return Float(math.Pow(lf, rf)), nil
	case "<":
		return Bool(lf < rf), nil
	case ">":
		return Bool(lf > rf), nil
	case "<=":
		return Bool(lf <= rf), nil
	case ">=":
		return Bool(lf >= rf), nil
	default:
		return nil, fmt.Errorf("value_error: unknown operator %q", op)
	}
}

// intPow computes base**exp by repeated squaring, staying in Int so that
// e.g. 1**0 and 0**0 both yield Int(1) rather than a Float from math.Pow.
func intPow(base Int, exp int64) Int {
	result := Int(1)
	b := base
	for exp > 0 {
		if exp&1 == 1 {
			result *= b
		}
		b *= b
		exp >>= 1
	}
	return result
}

func asFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Float:
		return float64(n), true
	default:
		return 0, false
	}
}

func valuesEqual(a, b Value) bool {
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		return af == bf
	}
	switch av := a.(type) {
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Nihil:
		_, ok := b.(Nihil)
		return ok
	default:
		return a.Inspect() == b.Inspect() && a.TypeName() == b.TypeName()
	}
}

func (vm *VM) evalNegate(v Value) (Value, error) {
	switch n := Unwrap(v).(type) {
	case Int:
		return -n, nil
	case Float:
		return -n, nil
	default:
		return nil, fmt.Errorf("type_error: - is not defined for %s", v.TypeName())
	}
}

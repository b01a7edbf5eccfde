package quiz

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Op is one of the four binary arithmetic operators a problem can use
type Op int

const (
	// Add is integer addition
	Add Op = iota
	// Subtract is integer subtraction
	Subtract
	// Multiply is integer multiplication
	Multiply
	// Divide is exact integer division
	Divide
)

// AllOps lists every operator in a stable order
var AllOps = []Op{Add, Subtract, Multiply, Divide}

// Symbol returns the operator as it is shown to the player
func (o Op) Symbol() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "?"
	}
}

func (o Op) String() string {
	return o.Symbol()
}

// apply computes the result of a op b. b must be non-zero for Divide.
func (o Op) apply(a, b int) int {
	switch o {
	case Add:
		return a + b
	case Subtract:
		return a - b
	case Multiply:
		return a * b
	case Divide:
		return a / b
	default:
		panic(fmt.Sprintf("quiz: unknown operator %d", int(o)))
	}
}

// Difficulty is a named operand range profile
type Difficulty string

const (
	// Easy draws operands from [1, 20]
	Easy Difficulty = "easy"
	// Medium draws operands from [10, 100]
	Medium Difficulty = "medium"
	// Hard draws operands from [50, 500]
	Hard Difficulty = "hard"
)

// Difficulties lists the supported tiers from easiest to hardest
var Difficulties = []Difficulty{Easy, Medium, Hard}

// OperandRange is an inclusive integer range
type OperandRange struct {
	Min int
	Max int
}

// Range returns the operand range of the tier
func (d Difficulty) Range() (OperandRange, error) {
	switch d {
	case Easy:
		return OperandRange{Min: 1, Max: 20}, nil
	case Medium:
		return OperandRange{Min: 10, Max: 100}, nil
	case Hard:
		return OperandRange{Min: 50, Max: 500}, nil
	default:
		return OperandRange{}, fmt.Errorf("%w: %q", ErrInvalidDifficulty, string(d))
	}
}

// ParseDifficulty converts user input such as " Hard " into a Difficulty
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, err := d.Range(); err != nil {
		return "", err
	}
	return d, nil
}

// Problem is a single generated question. It is never mutated after creation.
type Problem struct {
	A      int `json:"a"`
	B      int `json:"b"`
	Op     Op  `json:"op"`
	Answer int `json:"answer"`
}

// String renders the problem as "37 * 82"
func (p Problem) String() string {
	return fmt.Sprintf("%d %s %d", p.A, p.Op.Symbol(), p.B)
}

// Generator produces random arithmetic problems
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	ops []Op
}

// NewGenerator creates a generator drawing from src. A nil src is seeded from
// the clock. ops restricts the operators used; none means all four.
func NewGenerator(src rand.Source, ops ...Op) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	if len(ops) == 0 {
		ops = AllOps
	}
	return &Generator{
		rnd: rand.New(src),
		ops: append([]Op(nil), ops...),
	}
}

// Problem generates one problem for the given tier
func (g *Generator) Problem(d Difficulty) (Problem, error) {
	r, err := d.Range()
	if err != nil {
		return Problem{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.problem(r), nil
}

// Quiz generates exactly count problems for the given tier
func (g *Generator) Quiz(d Difficulty, count int) ([]Problem, error) {
	r, err := d.Range()
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuestionCount, count)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	problems := make([]Problem, 0, count)
	for i := 0; i < count; i++ {
		problems = append(problems, g.problem(r))
	}
	return problems, nil
}

// problem must be called with g.mu held
func (g *Generator) problem(r OperandRange) Problem {
	op := g.ops[g.rnd.Intn(len(g.ops))]
	a := g.between(r.Min, r.Max)
	b := g.between(r.Min, r.Max)

	if op == Divide {
		if b == 0 {
			b = g.between(1, 10)
		}
		// Keep the quotient exact
		a -= a % b
	}

	return Problem{A: a, B: b, Op: op, Answer: op.apply(a, b)}
}

func (g *Generator) between(lo, hi int) int {
	return lo + g.rnd.Intn(hi-lo+1)
}

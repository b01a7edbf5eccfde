package quiz

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_OperandsStayInRange(t *testing.T) {
	gen := NewGenerator(rand.NewSource(1), Add, Subtract, Multiply)

	for _, d := range Difficulties {
		r, err := d.Range()
		require.NoError(t, err)

		for i := 0; i < 500; i++ {
			p, err := gen.Problem(d)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, p.A, r.Min, "difficulty %s", d)
			assert.LessOrEqual(t, p.A, r.Max, "difficulty %s", d)
			assert.GreaterOrEqual(t, p.B, r.Min, "difficulty %s", d)
			assert.LessOrEqual(t, p.B, r.Max, "difficulty %s", d)
		}
	}
}

func TestGenerator_DivisionIsExact(t *testing.T) {
	gen := NewGenerator(rand.NewSource(7), Divide)

	for _, d := range Difficulties {
		r, err := d.Range()
		require.NoError(t, err)

		problems, err := gen.Quiz(d, 1000)
		require.NoError(t, err)
		require.Len(t, problems, 1000)

		for _, p := range problems {
			assert.Equal(t, Divide, p.Op)
			assert.NotZero(t, p.B)
			assert.GreaterOrEqual(t, p.B, r.Min)
			assert.LessOrEqual(t, p.B, r.Max)
			// The dividend is only ever rounded down to a multiple of the divisor
			assert.GreaterOrEqual(t, p.A, 0)
			assert.LessOrEqual(t, p.A, r.Max)
			assert.GreaterOrEqual(t, p.Answer, 0)
			assert.Equal(t, p.A, p.Answer*p.B, "problem %s", p)
		}
	}
}

func TestGenerator_AnswersMatchOperator(t *testing.T) {
	gen := NewGenerator(rand.NewSource(3))

	problems, err := gen.Quiz(Hard, 200)
	require.NoError(t, err)

	seen := map[Op]bool{}
	for _, p := range problems {
		seen[p.Op] = true
		switch p.Op {
		case Add:
			assert.Equal(t, p.A+p.B, p.Answer)
		case Subtract:
			assert.Equal(t, p.A-p.B, p.Answer)
		case Multiply:
			assert.Equal(t, p.A*p.B, p.Answer)
		case Divide:
			assert.Equal(t, p.A, p.Answer*p.B)
		default:
			t.Fatalf("unexpected operator %d", p.Op)
		}
	}
	assert.Len(t, seen, 4, "all operators should appear in 200 draws")
}

func TestGenerator_SameSeedSameQuiz(t *testing.T) {
	a, err := NewGenerator(rand.NewSource(42)).Quiz(Medium, 10)
	require.NoError(t, err)
	b, err := NewGenerator(rand.NewSource(42)).Quiz(Medium, 10)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGenerator_RejectsBadInput(t *testing.T) {
	gen := NewGenerator(rand.NewSource(1))

	_, err := gen.Problem(Difficulty("impossible"))
	assert.True(t, errors.Is(err, ErrInvalidDifficulty))

	_, err = gen.Quiz(Difficulty(""), 3)
	assert.ErrorIs(t, err, ErrInvalidDifficulty)

	_, err = gen.Quiz(Easy, 0)
	assert.ErrorIs(t, err, ErrInvalidQuestionCount)
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{in: "easy", want: Easy},
		{in: " Medium ", want: Medium},
		{in: "HARD", want: Hard},
		{in: "expert", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDifficulty(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDifficulty)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProblem_String(t *testing.T) {
	p := Problem{A: 37, B: 82, Op: Multiply, Answer: 3034}
	assert.Equal(t, "37 * 82", p.String())
}

package rank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/corank/pkg/errors"
)

func TestAfterSwapsRolesOfThePair(t *testing.T) {
	s := ScoringScheme{Before: PenaltyVector{10, 11, 12, 13, 14, 15}}

	after := s.After()

	assert.Equal(t, PenaltyVector{11, 10, 12, 14, 13, 15}, after)
	assert.Equal(t, s.Before[RelBefore], after[RelAfter])
	assert.Equal(t, s.Before[RelYAbsent], after[RelXAbsent])
	assert.Equal(t, s.Before[RelTied], after[RelTied])
	assert.Equal(t, s.Before[RelBothAbsent], after[RelBothAbsent])
}

func TestPenaltyVectorDot(t *testing.T) {
	v := PenaltyVector{0, 1, 0.5, 2, 3, 4}
	assert.InDelta(t, 1*1+2*0.5+1*2+1*3+1*4, v.Dot([NumRelations]int{7, 1, 2, 1, 1, 1}), 1e-12)
}

func TestScoringSchemeValidate(t *testing.T) {
	tests := []struct {
		name    string
		scheme  ScoringScheme
		wantErr bool
	}{
		{"unifying", Unifying, false},
		{"induced", Induced, false},
		{"fagin", Fagin(0.25), false},
		{"negative before", ScoringScheme{Before: PenaltyVector{-1}}, true},
		{"negative tied", ScoringScheme{Tied: PenaltyVector{0, 0, 0, 0, 0, -0.5}}, true},
		{"nan", ScoringScheme{Before: PenaltyVector{math.NaN()}}, true},
		{"inf", ScoringScheme{Tied: PenaltyVector{math.Inf(1)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scheme.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.Is(err, errs.ErrCodeInvalidScheme))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSchemeByName(t *testing.T) {
	s, err := SchemeByName(" Unifying ")
	require.NoError(t, err)
	assert.Equal(t, Unifying, s)

	_, err = SchemeByName("kendall")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidScheme))

	assert.Equal(t, []string{"fagin", "induced", "unifying"}, SchemeNames())
}

package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNumbers(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`15.5`, "15.5"},
		{`"15.5"`, "15.5"},
		{`[15.5]`, "15.5"},
		{`"[15.5]"`, "15.5"},
		{`[1, 2.25, "3"]`, "6.25"},
		{`"[1, 2]"`, "3"},
		{`12 tons`, "0"},
		{``, "0"},
		{`null`, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SumNumbers(NormalizeNumbers([]byte(tt.raw))).String(), tt.raw)
	}
}

func TestEncodeNumbers_RoundTripsThroughNormalize(t *testing.T) {
	values := NormalizeNumbers([]byte(`"[10.5, 4]"`))
	encoded := EncodeNumbers(values)
	assert.Equal(t, `[10.5,4]`, string(encoded))
	assert.Equal(t, "14.5", SumNumbers(NormalizeNumbers(encoded)).String())
}

func TestNormalizeStrings(t *testing.T) {
	assert.Equal(t, []string{"T-1", "T-2"}, NormalizeStrings([]byte(`["T-1", "T-2"]`)))
	assert.Equal(t, []string{"T-1", "T-2"}, NormalizeStrings([]byte(`"[\"T-1\",\"T-2\"]"`)))
	assert.Equal(t, []string{"4471"}, NormalizeStrings([]byte(`4471`)))
	assert.Equal(t, []string{"A-9"}, NormalizeStrings([]byte(`"A-9"`)))
	assert.Equal(t, []string{"A-9"}, NormalizeStrings([]byte(`A-9`)))
	assert.Equal(t, []string{"12", "B"}, NormalizeStrings([]byte(`[12, "", " B "]`)))
	assert.Nil(t, NormalizeStrings([]byte(`null`)))
	assert.Equal(t, `[]`, string(EncodeStrings(nil)))
}

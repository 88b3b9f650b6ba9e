package entities_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greymere/keeper-api/internal/entities"
)

func TestStatValueUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantInt   int
		wantValid bool
	}{
		{"numeric string", `"45"`, 45, true},
		{"padded string", `" 70 "`, 70, true},
		{"empty string", `""`, 0, false},
		{"free-form text", `"1D3 + DB"`, 0, false},
		{"json number", `35`, 35, true},
		{"null", `null`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v entities.StatValue
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.wantValid, v.Valid)
			assert.Equal(t, tt.wantInt, v.Int())
		})
	}
}

func TestStatValueRoundTripPreservesRaw(t *testing.T) {
	var sheet struct {
		Reg entities.StatValue `json:"reg"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"reg":"n/a"}`), &sheet))

	out, err := json.Marshal(sheet)
	require.NoError(t, err)
	assert.JSONEq(t, `{"reg":"n/a"}`, string(out))
}

func TestSkillMapDecodesFromSheetJSON(t *testing.T) {
	raw := `{"skills":{"Spot Hidden":{"base":"25","reg":"40","used":false},"Listen":{"base":"20","reg":"","used":true}}}`

	var sheet entities.CharacterSheet
	require.NoError(t, json.Unmarshal([]byte(raw), &sheet))

	assert.Equal(t, 40, sheet.Skills["Spot Hidden"].Reg.Int())
	assert.False(t, sheet.Skills["Listen"].Reg.Valid)
	assert.True(t, sheet.Skills["Listen"].Used)
}

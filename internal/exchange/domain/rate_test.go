package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurate(t *testing.T) {
	raw := []Rate{
		{Casa: "tarjeta", Name: "Tarjeta", Sell: decimal.NewFromInt(1500)},
		{Casa: "mayorista", Name: "Mayorista", Sell: decimal.NewFromInt(900)},
		{Casa: "blue", Name: "Blue", Sell: decimal.NewFromInt(1200)},
		{Casa: "oficial", Name: "Oficial", Sell: decimal.NewFromInt(950)},
		{Casa: "cripto", Name: "Cripto", Sell: decimal.NewFromInt(1210)},
	}

	curated := Curate(raw)

	require.Len(t, curated, 3)
	assert.Equal(t, []string{"oficial", "blue", "tarjeta"}, []string{curated[0].Casa, curated[1].Casa, curated[2].Casa})
	assert.Equal(t, "Dólar Oficial", curated[0].Name)
	assert.Equal(t, "Dólar Blue", curated[1].Name)
	assert.Equal(t, "Dólar Tarjeta", curated[2].Name)
}

func TestCurate_Empty(t *testing.T) {
	assert.Empty(t, Curate(nil))
}

func TestFind(t *testing.T) {
	rates := Curate([]Rate{{Casa: "bolsa", Sell: decimal.NewFromInt(1100)}})

	rate, err := Find(rates, "bolsa")
	require.NoError(t, err)
	assert.Equal(t, "Dólar MEP", rate.Name)

	_, err = Find(rates, "blue")
	assert.ErrorIs(t, err, ErrRateNotFound)
}

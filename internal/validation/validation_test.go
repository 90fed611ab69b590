package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidarUbigeo(t *testing.T) {
	tests := []struct {
		nombre string
		ubigeo string
		valido bool
	}{
		{"distrital válido", "010101", true},
		{"muy corto", "0101", false},
		{"muy largo", "01010101", false},
		{"con letras", "01A101", false},
		{"vacío", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.nombre, func(t *testing.T) {
			err := ValidarUbigeo(tt.ubigeo)
			if tt.valido {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidarCodigosCCPP(t *testing.T) {
	assert.NoError(t, ValidarCodigosCCPP([]string{"0101010001", "0101010002"}))
	assert.Error(t, ValidarCodigosCCPP(nil))
	assert.Error(t, ValidarCodigosCCPP([]string{"0101010001", "123"}))
}

func TestValidarSeccionID(t *testing.T) {
	assert.NoError(t, ValidarSeccionID("3.1.4.A.1.7"))
	assert.NoError(t, ValidarSeccionID("3.2.1"))
	assert.Error(t, ValidarSeccionID(""))
	assert.Error(t, ValidarSeccionID("3..1"))
	assert.Error(t, ValidarSeccionID("3.AB.1"))
	assert.Error(t, ValidarSeccionID("3.a.1"))
}

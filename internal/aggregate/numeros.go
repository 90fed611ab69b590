package aggregate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParsearNumero coerces any cell value to an integer count. Las cadenas se
// recortan y se toma el prefijo entero con signo; "25.5" trunca a 25 y todo
// lo no numérico vale 0. Esta regla de truncado rige en todo el motor.
func ParsearNumero(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int(math.Trunc(t))
	case string:
		return parsearEntero(t)
	}
	return 0
}

// parsearEntero imita parseInt: prefijo [+-]?[0-9]+ tras recortar espacios.
func parsearEntero(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	fin := 0
	if s[0] == '+' || s[0] == '-' {
		fin = 1
	}
	for fin < len(s) && s[fin] >= '0' && s[fin] <= '9' {
		fin++
	}

	n, err := strconv.Atoi(strings.TrimPrefix(s[:fin], "+"))
	if err != nil {
		return 0
	}
	return n
}

// CalcularPorcentaje formats valor/total as a percentage in the Peruvian
// report convention: coma decimal y espacio antes del signo, "12,34 %".
// Total cero o entradas no finitas producen el cero formateado.
func CalcularPorcentaje(valor, total float64, decimales int) string {
	if decimales < 0 {
		decimales = 2
	}

	cero := strings.Replace(strconv.FormatFloat(0, 'f', decimales, 64), ".", ",", 1) + " %"
	if total <= 0 || math.IsNaN(valor) || math.IsNaN(total) {
		return cero
	}

	pct := valor / total * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return cero
	}

	texto := strconv.FormatFloat(pct, 'f', decimales, 64)
	return strings.Replace(texto, ".", ",", 1) + " %"
}

// Porcentaje aplica el formato estándar de dos decimales.
func Porcentaje(valor, total float64) string {
	return CalcularPorcentaje(valor, total, 2)
}

// FormatearEntero devuelve el conteo como texto sin separadores.
func FormatearEntero(n int) string {
	return fmt.Sprintf("%d", n)
}

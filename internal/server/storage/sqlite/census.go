package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/linea-base/lbs/internal/server/storage"
)

const columnasDemograficos = `codigo, ubigeo, hombres, mujeres,
	edad_0_14, edad_15_29, edad_30_44, edad_45_64, edad_65_mas, poblacion_total`

// DemograficosPorUbigeo lists the demographic counts of every populated
// place in a district.
func (s *Storage) DemograficosPorUbigeo(ctx context.Context, ubigeo string) ([]storage.RegistroDemografico, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM demograficos
		WHERE ubigeo = ?
		ORDER BY codigo
	`, columnasDemograficos)

	rows, err := s.db.QueryContext(ctx, query, ubigeo)
	if err != nil {
		return nil, fmt.Errorf("failed to query demograficos: %w", err)
	}
	defer rows.Close()

	return escanearDemograficos(rows)
}

// DemograficosPorCodigos lists the demographic counts of specific populated
// places.
func (s *Storage) DemograficosPorCodigos(ctx context.Context, codigos []string) ([]storage.RegistroDemografico, error) {
	if len(codigos) == 0 {
		return nil, nil
	}

	marcadores := strings.Repeat("?,", len(codigos))
	query := fmt.Sprintf(`
		SELECT %s
		FROM demograficos
		WHERE codigo IN (%s)
		ORDER BY codigo
	`, columnasDemograficos, marcadores[:len(marcadores)-1])

	args := make([]any, len(codigos))
	for i, codigo := range codigos {
		args[i] = codigo
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query demograficos: %w", err)
	}
	defer rows.Close()

	return escanearDemograficos(rows)
}

// IndicadoresPorUbigeo lists one indicator family for a district.
func (s *Storage) IndicadoresPorUbigeo(ctx context.Context, familia, ubigeo string) ([]storage.Indicador, error) {
	query := `
		SELECT ubigeo, familia, categoria, material, casos
		FROM indicadores
		WHERE ubigeo = ? AND familia = ?
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, ubigeo, familia)
	if err != nil {
		return nil, fmt.Errorf("failed to query indicadores: %w", err)
	}
	defer rows.Close()

	var indicadores []storage.Indicador
	for rows.Next() {
		var ind storage.Indicador
		if err := rows.Scan(&ind.Ubigeo, &ind.Familia, &ind.Categoria, &ind.Material, &ind.Casos); err != nil {
			return nil, fmt.Errorf("failed to scan indicador: %w", err)
		}
		indicadores = append(indicadores, ind)
	}
	return indicadores, rows.Err()
}

// CentrosPoblados lists the populated places of a district.
func (s *Storage) CentrosPoblados(ctx context.Context, ubigeo string) ([]storage.CentroPoblado, error) {
	query := `
		SELECT codigo, ubigeo, nombre
		FROM centros_poblados
		WHERE ubigeo = ?
		ORDER BY codigo
	`

	rows, err := s.db.QueryContext(ctx, query, ubigeo)
	if err != nil {
		return nil, fmt.Errorf("failed to query centros poblados: %w", err)
	}
	defer rows.Close()

	var centros []storage.CentroPoblado
	for rows.Next() {
		var cp storage.CentroPoblado
		if err := rows.Scan(&cp.Codigo, &cp.Ubigeo, &cp.Nombre); err != nil {
			return nil, fmt.Errorf("failed to scan centro poblado: %w", err)
		}
		centros = append(centros, cp)
	}
	return centros, rows.Err()
}

// CentrosPobladosPorCodigos lists specific populated places.
func (s *Storage) CentrosPobladosPorCodigos(ctx context.Context, codigos []string) ([]storage.CentroPoblado, error) {
	if len(codigos) == 0 {
		return nil, nil
	}

	marcadores := strings.Repeat("?,", len(codigos))
	query := fmt.Sprintf(`
		SELECT codigo, ubigeo, nombre
		FROM centros_poblados
		WHERE codigo IN (%s)
		ORDER BY codigo
	`, marcadores[:len(marcadores)-1])

	args := make([]any, len(codigos))
	for i, codigo := range codigos {
		args[i] = codigo
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query centros poblados: %w", err)
	}
	defer rows.Close()

	var centros []storage.CentroPoblado
	for rows.Next() {
		var cp storage.CentroPoblado
		if err := rows.Scan(&cp.Codigo, &cp.Ubigeo, &cp.Nombre); err != nil {
			return nil, fmt.Errorf("failed to scan centro poblado: %w", err)
		}
		centros = append(centros, cp)
	}
	return centros, rows.Err()
}

type escaneable interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func escanearDemograficos(rows escaneable) ([]storage.RegistroDemografico, error) {
	var registros []storage.RegistroDemografico
	for rows.Next() {
		var r storage.RegistroDemografico
		err := rows.Scan(
			&r.Codigo,
			&r.Ubigeo,
			&r.Hombres,
			&r.Mujeres,
			&r.Edad0a14,
			&r.Edad15a29,
			&r.Edad30a44,
			&r.Edad45a64,
			&r.Edad65aMas,
			&r.PoblacionTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registro demografico: %w", err)
		}
		registros = append(registros, r)
	}
	return registros, rows.Err()
}

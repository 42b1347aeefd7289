package postgres

// Точность координат GeoJSON (знаков после запятой)
const GeoJSONPrecision = 6

// MaxCodesPerQuery - максимальное число кодов территорий в одном запросе
const MaxCodesPerQuery = 5000

// simplifyTolerance - допуск упрощения геометрии по уровню территорий (градусы)
var simplifyTolerance = map[string]float64{
	"country":    0.01,
	"region":     0.005,
	"department": 0.002,
	"commune":    0,
}

// ToleranceForLevel возвращает допуск упрощения для уровня, 0 - без упрощения
func ToleranceForLevel(level string) float64 {
	return simplifyTolerance[level]
}

const (
	queryIndicatorByID = `
		SELECT id, name, unit, polarity, decimals
		FROM indicators
		WHERE id = $1`

	queryIndicatorValues = `
		SELECT code, label, value, weight, fields
		FROM indicator_values
		WHERE indicator_id = $1 AND period = $2 AND level = $3
		ORDER BY code`

	queryIndicatorValuesByCodes = `
		SELECT code, label, value, weight, fields
		FROM indicator_values
		WHERE indicator_id = $1 AND period = $2 AND level = $3 AND code = ANY($4)
		ORDER BY code`

	queryIndicatorReference = `
		SELECT value
		FROM indicator_references
		WHERE indicator_id = $1 AND period = $2`

	queryIndicatorPeriods = `
		SELECT DISTINCT period
		FROM indicator_values
		WHERE indicator_id = $1
		ORDER BY period`

	queryTerritoriesByLevel = `
		SELECT code, level, name, population,
			CASE WHEN geom IS NULL THEN NULL
				WHEN $2::float8 > 0 THEN ST_AsGeoJSON(ST_SimplifyPreserveTopology(geom, $2::float8), $3)
				ELSE ST_AsGeoJSON(geom, $3)
			END AS geometry
		FROM territories
		WHERE level = $1
		ORDER BY code`
)

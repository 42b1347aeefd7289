package domain

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// Territory - административная территория с геометрией PostGIS
type Territory struct {
	Code         string   `json:"code" db:"code"`
	Level        string   `json:"level" db:"level"`
	Name         string   `json:"name" db:"name"`
	Population   *float64 `json:"population,omitempty" db:"population"`
	GeometryJSON []byte   `json:"-" db:"geometry"`
}

// Feature конвертирует территорию в GeoJSON объект со свойствами code, name, population
func (t *Territory) Feature() (*geojson.Feature, error) {
	f := &geojson.Feature{Type: "Feature", Properties: geojson.Properties{}}
	if len(t.GeometryJSON) > 0 {
		g, err := geojson.UnmarshalGeometry(t.GeometryJSON)
		if err != nil {
			return nil, fmt.Errorf("territory %s geometry: %w", t.Code, err)
		}
		f.Geometry = g.Geometry()
	}
	f.ID = t.Code
	f.Properties["code"] = t.Code
	f.Properties["name"] = t.Name
	if t.Population != nil {
		f.Properties["population"] = *t.Population
	}
	return f, nil
}

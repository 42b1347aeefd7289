// Package docs Indicator Maps API.
//
// Сервис кодирования территориальных индикаторов в картографические представления:
// хороплет с дивергентной шкалой, пропорциональные символы, классификация динамики,
// стиль MapLibre и HTML-легенда.
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//	- text/html
//
// swagger:meta
package docs

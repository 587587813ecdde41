package service

import (
	"context"
	"sort"

	"github.com/jengzang/riskdash-backend/internal/cache"
	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/spatial"
)

// GeoService builds the incident map markers
type GeoService struct {
	state *State
	cache *cache.Cache
}

// NewGeoService creates a geo service; cache may be nil
func NewGeoService(state *State, c *cache.Cache) *GeoService {
	return &GeoService{state: state, cache: c}
}

type subRegionGeo struct {
	points    []spatial.Point
	weights   []float64
	incidents int64
}

// Incidents returns one marker per sub-region with coordinates over the last
// year: its count-weighted centroid, total incidents, severity and state
func (s *GeoService) Incidents(ctx context.Context) ([]models.GeoIncident, error) {
	return cache.GetOrLoad(ctx, s.cache, "geo:incidents", func() ([]models.GeoIncident, error) {
		table, err := s.state.Table(ctx)
		if err != nil {
			return nil, err
		}
		attending := attendingSubRegions(table)

		groups := make(map[string]*subRegionGeo)
		var order []string
		for _, r := range table.YearRows(table.LatestYear()) {
			if r.SubRegion == "" {
				continue
			}
			g, ok := groups[r.SubRegion]
			if !ok {
				g = &subRegionGeo{}
				groups[r.SubRegion] = g
				order = append(order, r.SubRegion)
			}
			g.incidents += r.Count
			if r.HasLocation() {
				g.points = append(g.points, spatial.Point{Lat: r.Latitude, Lon: r.Longitude})
				g.weights = append(g.weights, float64(r.Count))
			}
		}

		out := make([]models.GeoIncident, 0, len(order))
		var totals []float64
		for _, sub := range order {
			g := groups[sub]
			c, ok := spatial.WeightedCentroid(g.points, g.weights)
			if !ok {
				// zero-count rows still place the marker
				if c, ok = spatial.WeightedCentroid(g.points, nil); !ok {
					continue
				}
			}
			out = append(out, models.GeoIncident{
				Latitude:  c.Lat,
				Longitude: c.Lon,
				State:     incidentState(attending, sub),
				SubRegion: sub,
				Incidents: g.incidents,
			})
			totals = append(totals, float64(g.incidents))
		}

		scale := newSeverityScale(totals)
		for i := range out {
			out[i].Severity = scale.classify(float64(out[i].Incidents))
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Incidents > out[j].Incidents })
		return out, nil
	})
}

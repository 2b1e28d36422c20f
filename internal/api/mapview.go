package api

import "net/http"

// MapRegion is the initial map viewport, in degrees.
type MapRegion struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitude_delta"`
	LongitudeDelta float64 `json:"longitude_delta"`
}

// handleMap returns the configured map region. The map is decorative; it
// reads nothing from the people store.
func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MapRegion{
		Latitude:       s.mapCfg.Latitude,
		Longitude:      s.mapCfg.Longitude,
		LatitudeDelta:  s.mapCfg.LatitudeDelta,
		LongitudeDelta: s.mapCfg.LongitudeDelta,
	})
}

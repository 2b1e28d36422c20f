package api

import (
	"context"
	"net/http"
	"runtime"
	"time"
)

const bytesPerMB = 1 << 20

// SystemMetrics is the body of GET /metrics. Sections for optional
// components are omitted when the component is not configured.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	People        PeopleMetrics    `json:"people"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
	MQTT          *MQTTMetrics     `json:"mqtt,omitempty"`
}

type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// PeopleMetrics reports the stored record count. Error is set instead when
// the store could not be read.
type PeopleMetrics struct {
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

// DatabaseMetrics mirrors the sql.DBStats pool counters.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

type MQTTMetrics struct {
	Connected bool `json:"connected"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime:       readRuntimeMetrics(),
		WebSocket:     WSMetrics{ConnectedClients: s.hub.ClientCount()},
		People:        s.peopleMetrics(r.Context()),
		Database:      s.databaseMetrics(),
		MQTT:          s.mqttMetrics(),
	})
}

func readRuntimeMetrics() RuntimeMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return RuntimeMetrics{
		Goroutines:    runtime.NumGoroutine(),
		MemoryAllocMB: float64(ms.Alloc) / bytesPerMB,
		MemoryTotalMB: float64(ms.TotalAlloc) / bytesPerMB,
		NumGC:         ms.NumGC,
	}
}

func (s *Server) peopleMetrics(ctx context.Context) PeopleMetrics {
	n, err := s.people.Count(ctx)
	if err != nil {
		return PeopleMetrics{Error: "unavailable"}
	}
	return PeopleMetrics{Total: n}
}

func (s *Server) databaseMetrics() *DatabaseMetrics {
	if s.db == nil {
		return nil
	}
	st := s.db.Stats()
	return &DatabaseMetrics{
		OpenConnections: st.OpenConnections,
		InUse:           st.InUse,
		Idle:            st.Idle,
		WaitCount:       st.WaitCount,
	}
}

func (s *Server) mqttMetrics() *MQTTMetrics {
	if s.mqtt == nil {
		return nil
	}
	return &MQTTMetrics{Connected: s.mqtt.IsConnected()}
}

package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/datacollector/internal/person"
)

// Measurement names.
const (
	measurementStoreOperations = "store_operations"
	measurementPeople          = "people"
)

var _ person.MetricsRecorder = (*Client)(nil)

// RecordOperation writes one store call as a store_operations point.
// It implements person.MetricsRecorder. No-op when not connected.
func (c *Client) RecordOperation(op string, d time.Duration, err error) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(storeOperationPoint(op, d, err, time.Now()))
}

// WritePeopleCount records the current number of stored people.
func (c *Client) WritePeopleCount(n int) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(peopleCountPoint(n, time.Now()))
}

// storeOperationPoint builds the point for one store call. Tags stay low
// cardinality: the operation name and ok/error.
func storeOperationPoint(op string, d time.Duration, err error, ts time.Time) *write.Point {
	status := "ok"
	if err != nil {
		status = "error"
	}
	return write.NewPoint(
		measurementStoreOperations,
		map[string]string{
			"operation": op,
			"status":    status,
		},
		map[string]interface{}{
			"duration_ms": float64(d) / float64(time.Millisecond),
			"count":       int64(1),
		},
		ts,
	)
}

func peopleCountPoint(n int, ts time.Time) *write.Point {
	return write.NewPoint(
		measurementPeople,
		nil,
		map[string]interface{}{
			"count": int64(n),
		},
		ts,
	)
}

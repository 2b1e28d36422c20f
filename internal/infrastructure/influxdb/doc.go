// Package influxdb records store telemetry in InfluxDB v2.
//
// Telemetry is optional (influxdb.enabled). When enabled, the Client is
// registered as a person.MetricsRecorder and every store call becomes a
// store_operations point:
//
//	store_operations,operation=create,service=datacollector,status=ok duration_ms=0.41,count=1i
//
// A periodic people point carries the row count. No personal field values
// are written.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	switch {
//	case errors.Is(err, influxdb.ErrDisabled):
//	    // telemetry off
//	case err != nil:
//	    log.Warn("influxdb unavailable", "error", err)
//	default:
//	    defer client.Close()
//	    svc.AddRecorder(client)
//	}
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are non-blocking and
// batched per batch_size and flush_interval; asynchronous write errors are
// delivered to the SetOnError callback.
package influxdb

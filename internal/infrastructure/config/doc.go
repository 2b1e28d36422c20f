// Package config loads the data collector configuration.
//
// Values come from built-in defaults, then the YAML file, then
// DATACOLLECTOR_* environment variables. Validate reports every problem at
// once rather than stopping at the first.
//
// Keep secrets (security.auth.jwt_secret, mqtt.auth.password,
// influxdb.token) out of the file and supply them through the environment.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
package config

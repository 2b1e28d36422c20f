// Package mqtt publishes people change events to an MQTT broker.
//
// Publishing is optional (mqtt.enabled). When enabled, every committed
// create, update and delete is sent as JSON to
//
//	{prefix}/people/created
//	{prefix}/people/updated
//	{prefix}/people/deleted
//
// and a retained {prefix}/system/status message tracks whether the service
// is online. A Last Will and Testament marks it offline if the process dies
// without disconnecting.
//
// # Security Considerations
//
// Event payloads contain personal fields. Enable TLS (broker.tls) and broker
// ACLs for any deployment beyond a local development broker.
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	svc.AddNotifier(mqtt.NewEventPublisher(client, client.Topics(), log))
package mqtt

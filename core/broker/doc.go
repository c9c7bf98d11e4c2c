// Package broker publishes application events to RabbitMQ.
//
// The RabbitMQ publisher declares a durable topic exchange, enables publisher
// confirms and waits for the broker acknowledgement of every message. Nop is
// used when no broker URL is configured.
package broker

// Package msgs defines the device protocol message schemas.
package msgs

// The device protocol is spoken between a transceiver device and its
// clients over any packet transport (MQTT, websocket, length-prefixed
// stream). Every packet is a Typed envelope carrying a type identifier, a
// correlation sequence for command/reply pairs and a JSON payload.
//
// Producer: transceiver device
// Consumer: control clients

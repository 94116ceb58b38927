package net

// BroadcastAddr is the target that delivers a payload to every node attached
// to the same channel.
const BroadcastAddr = "255.255.255.255"

// Handler consumes an inbound payload. from is the sender's address.
type Handler func(payload []byte, from string)

// Transport provides an interface for network transports to allow a node to
// send datagrams to other nodes.
type Transport interface {

	// Listen registers the handler for inbound payloads. Payloads arriving
	// before Listen is called are dropped.
	Listen(handler Handler)

	// LocalAddr is used to return our local address
	LocalAddr() string

	// Send delivers payload to target, or to every other node when target is
	// BroadcastAddr. Delivery is best effort.
	Send(target string, payload []byte) error

	// Close permanently closes a transport, stopping
	// any associated goroutines and freeing other resources.
	Close() error
}

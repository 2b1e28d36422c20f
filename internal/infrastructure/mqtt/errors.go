package mqtt

import "errors"

var (
	// ErrConnectionFailed wraps whatever stopped Connect from establishing a session.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrNotConnected is returned while the broker link is down.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrPublishFailed wraps encoding, size and broker acknowledgement failures.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	ErrInvalidQoS   = errors.New("mqtt: QoS must be 0, 1 or 2")
	ErrInvalidTopic = errors.New("mqtt: topic is empty")
)

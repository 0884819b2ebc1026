package events

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers messages whose topic matches pattern on the
	// returned channel. Call the returned cancel function to unsubscribe
	// and close the channel.
	Subscribe(pattern string) (<-chan Message, func(), error)
	Close() error
}

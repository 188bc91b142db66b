package outbound

// WakeSource notifies subscribers when the process regains attention
// after a period of suspension, such as resuming from SIGSTOP or the
// machine waking from sleep. Subscribers use it to re-validate the
// session immediately instead of waiting for the next refresh tick.
type WakeSource interface {
	// Subscribe returns a channel that receives a value on each wake
	// event. Delivery is best-effort: events may be dropped if the
	// subscriber is not receiving.
	Subscribe() <-chan struct{}

	// Unsubscribe removes a channel previously returned by Subscribe.
	Unsubscribe(<-chan struct{})
}

// Package transport opens streaming connections to agent endpoints and
// exposes them as a lazy, cancellable notification sequence: exactly one
// headers notification (status + header map) followed by zero or more data
// chunk notifications, ending in natural completion or failure. Cancelling
// the context tears the connection down immediately; nothing is emitted
// afterwards.
package transport

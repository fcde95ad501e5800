package constants

import (
	"time"

	"github.com/gitpulse-io/gitpulse"
)

// Feed
const (
	// DefaultFeedLimit is the page size used when the client does not ask
	// for one.
	DefaultFeedLimit = 50
	// MaxFeedLimit caps the page size regardless of what the client asks for.
	MaxFeedLimit = 1000
)

// Ingestion
const (
	// StorageTimeout bounds a single storage round trip during ingestion. A
	// delivery that exceeds it is reported as transient so the sender's
	// retry logic redelivers it.
	StorageTimeout = time.Second * 5
)

// GitHub webhook headers
const (
	HeaderEvent     = "X-GitHub-Event"
	HeaderSignature = "X-Hub-Signature-256"
	HeaderDelivery  = "X-GitHub-Delivery"
)

type Header struct {
	Name  string
	Value string
}

var DefaultResponseHeaders = []Header{
	{Name: "Server", Value: "gitpulse/" + gitpulse.VERSION},
}

package storage

import "soldexlogs/internal/model"

// Sink is a durable destination for captured records. A nil error from
// Append means the record survives an abrupt process termination.
type Sink interface {
	Append(record model.DexRecord) error
	Close() error
}

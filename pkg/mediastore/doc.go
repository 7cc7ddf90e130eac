// Package mediastore provides the media asset storage and delivery layer for
// the marketplace: durable byte storage behind pluggable backends, structured
// metadata tied to marketplace entities, and stable delivery URLs.
//
// It exposes a single Service interface that orchestrates upload/delete of
// media assets, metadata persistence, and thumbnail URL derivation.
// Implementations of metadata stores (memory, Postgres) and storage backends
// (memory, filesystem, S3) are provided under subpackages.
//
// Consistency Contract
//
// A MediaAsset record exists if and only if the corresponding bytes are
// retrievable at its URL: bytes are stored before metadata is persisted, and
// a metadata-persist failure triggers a compensating delete of the stored
// bytes before the error is surfaced. Partial success is never returned.
package mediastore

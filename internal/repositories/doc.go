// package repositories provides the persistence layer over the local
// SQLite database.
//
// The track cache repository is the durable side of the metadata
// pipeline: every resolved BPM and genre answer lands here so later
// runs skip the network entirely.
package repositories

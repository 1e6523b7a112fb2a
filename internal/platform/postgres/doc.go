// Package postgres contains the PostgreSQL implementations of the store
// interfaces. Each store works against the store.DBTX abstraction so the
// same code serves both direct connections and transactions; the scheduler
// binds all of its per-tick writes to one transaction via WithTx.
package postgres

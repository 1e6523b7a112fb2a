// Package store defines the persistence contracts for the application:
// interfaces for task, reminder, and push-log storage, the DBTX abstraction
// over connections and transactions, the RunInTransaction helper, and the
// sentinel errors shared by all implementations.
package store

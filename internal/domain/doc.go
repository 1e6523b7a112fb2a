// Package domain contains the core entities of the application: tasks and
// their reminders. Entities carry their own validation and, for reminders,
// the legal state transitions of the reminder lifecycle. The package has no
// dependencies on storage or transport concerns.
package domain

// Package person is the record store and field validator for collected
// people.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                         person.Service                        │
//	│   Normalize ─▶ Validate ─▶ Repository ─▶ Notifier / Recorder │
//	└──────────────────────────────────────────────────────────────┘
//	                              │
//	             ┌────────────────┴────────────────┐
//	             ▼                                 ▼
//	   SQLiteRepository                    MemoryRepository
//	   (people table)                      (tests, tooling)
//
// The Repository executes one statement per call and never validates.
// Service is the only write path used by the API and command-line tools,
// and it always runs Validate before Create and Update.
//
// # Not-found semantics
//
// A missing id is not an error. Get returns ok=false; Update and Delete
// return zero rows affected. Storage failures wrap ErrStorage.
//
// # Usage
//
//	repo := person.NewSQLiteRepository(db.DB)
//	if err := repo.Initialize(ctx); err != nil {
//	    log.Error("initialising people table", "error", err)
//	}
//	svc := person.NewService(repo)
//	p, err := svc.Create(ctx, person.Fields{FullName: "Ada Lovelace"})
//	if errors.Is(err, person.ErrValidation) {
//	    // show the per-field messages
//	}
package person

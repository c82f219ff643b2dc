// Package entity describes the records of the test-management API.
//
// Each entity is one Descriptor: its REST resource, console slug, hub
// group, table columns, form fields and the set of CRUD verbs the API
// offers for it. Descriptors are bound to a typed schema with Define, which
// rejects columns or fields that name no JSON field of the schema.
//
// Accessors are generated from descriptors:
//
//	runs, _ := entity.Default().Lookup("runs")
//	list, err := entity.For[entity.Run](client, runs).WithToken(tok).List(ctx)
//
// Calling a verb outside the descriptor's capabilities returns
// ErrUnsupported without touching the network.
package entity

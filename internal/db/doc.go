// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db contains the persistent store of a Keysafe vault.
//
// The store owns three tables: `folders`, `items` and `master`. All access
// goes through the `Store` interface, implemented once on top of Bun
// (`BunStore`) for the sqlite, postgres and mysql dialects.
//
// Schema
//   - Tables are created by embedded, per-dialect migrations recorded in
//     `schema_migrations`. `Store.Initialize` applies pending migrations and
//     inserts the single root folder when the vault is empty, so it is safe to
//     call on every startup.
//
// Errors
//   - Every failure leaves the store as a `*StorageError` carrying the failed
//     operation. Missing rows wrap `ErrNotFound`; driver constraint violations
//     are mapped by `MapDBError`.
//
// Testing notes
//   - Use a per-test in-memory DSN such as
//     `file:<test name>?mode=memory&cache=shared` with `NewStoreFromDSN`.
package db

/*
Package ports defines the driven ports (interfaces) of sift.

These interfaces decouple the catalog from storage implementations, allowing
definitions to live in files, Redis, SQLite or memory.

# Key Interfaces

  - DefinitionStore: persists named schema definitions.
  - Watchable: notifies about changes in a store, for hot reload.

Every DefinitionStore adapter runs the shared suite in package tests.
*/
package ports

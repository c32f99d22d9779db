/*
Package domain contains the shared vocabulary of sift outside the validation engine itself.

It defines the sentinel errors returned by stores and catalogs and the lifecycle events
emitted while schemas are registered and used. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - ValidationEvent: emitted after each catalog validation (outcome, issue codes, duration).
  - RegisterEvent: emitted when a schema is registered or replaced.
  - LifecycleHooks: the callbacks receiving those events.
*/
package domain

// Package cache defines the static cache-invalidation policy applied by the
// event bus, and the Invalidator interface the hosting application's keyed
// request cache implements.
//
// The policy is a data table from notification kind to the resource keys
// that go stale when that kind arrives. New kinds are added by extending
// the table, never by touching dispatch logic.
package cache

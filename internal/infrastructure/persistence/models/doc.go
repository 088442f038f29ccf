// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel)
// - rental.go: Live ledger rows (tenants, payments)
// - archive.go: Immutable copies of deleted tenants and payments
// - history.go: Append-only audit trail
// - sms.go: Notification delivery log
package models

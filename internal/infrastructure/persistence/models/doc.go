// Package models contains GORM persistence models mapped to database tables.
// Domain entities carry no ORM tags; each model has ToDomain and a
// ...ModelFromDomain constructor, and repositories only touch models.
package models

// Package service contains the annotation use cases. It orchestrates domain
// objects and the repositories defined in internal/store: single-annotation
// CRUD, paged search, bulk label mutation inside a transaction, text import
// and the label catalogue.
//
// Services receive their dependencies through constructor injection and
// depend only on store interfaces, never on a concrete database. Expected
// conditions (not found, duplicate, validation) are returned as the store or
// domain sentinels so the API layer can map them to status codes; anything
// else is wrapped in a ServiceError.
package service

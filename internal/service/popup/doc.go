// Package popup implements the popup catalog service.
//
// This is the single source of truth for which promotional popups exist and
// which ones a given page visit may see. The admin back-office manages the
// catalog through the CRUD operations; the public active-popups endpoint is
// the server-side targeting pre-filter consumed by the orchestration engine.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go. It never imports
// net/http or database/sql directly.
package popup

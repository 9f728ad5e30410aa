// Package migration brings the schema up to date at startup.
package migration

import (
	auditdomain "github.com/fixwell/docforge/internal/audit/domain"
	recorddomain "github.com/fixwell/docforge/internal/record/domain"
	templatedomain "github.com/fixwell/docforge/internal/template/domain"
	"gorm.io/gorm"
)

// Run migrates every persisted model. AutoMigrate is additive and safe
// to run on every boot.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&templatedomain.Template{},
		&recorddomain.Customer{},
		&recorddomain.Invoice{},
		&recorddomain.RepairTicket{},
		&recorddomain.Quote{},
		&auditdomain.RenderLog{},
	)
}

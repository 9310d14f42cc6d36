package handlers

import (
	"sparesledger/internal/config"
	"sparesledger/internal/repos"
	"sparesledger/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Ledger *services.Ledger
	Roles  *services.RoleService

	AuthHandler        *AuthHandler
	DashboardHandler   *DashboardHandler
	InventoryHandler   *InventoryHandler
	TransactionHandler *TransactionHandler
	APIHandler         *APIHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, opts ...services.LedgerOption) *Deps {
	ledger := services.NewLedger(db, opts...)
	roles := &services.RoleService{
		Sessions:        repos.NewSessionRepo(db),
		AdminName:       cfg.AdminName,
		StoreKeeperName: cfg.StoreKeeperName,
	}
	dash := services.NewDashboardService(ledger, cfg.UnitPrice())

	return &Deps{
		Ledger:             ledger,
		Roles:              roles,
		AuthHandler:        &AuthHandler{Roles: roles},
		DashboardHandler:   &DashboardHandler{Dash: dash},
		InventoryHandler:   &InventoryHandler{Ledger: ledger},
		TransactionHandler: &TransactionHandler{Ledger: ledger},
		APIHandler:         &APIHandler{Ledger: ledger, Dash: dash},
	}
}

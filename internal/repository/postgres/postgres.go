package postgres

import (
	"database/sql"

	"cabinfolio-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.AllowanceRepository
	repository.CredentialRepository
	repository.ReconciliationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                       db,
		AllowanceRepository:      NewAllowanceRepository(db),
		CredentialRepository:     NewCredentialRepository(db),
		ReconciliationRepository: NewReconciliationRepository(db),
	}
}

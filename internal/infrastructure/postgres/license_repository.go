package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/whats-middleware/internal/domain"
	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	"github.com/tu-usuario/whats-middleware/internal/domain/repository"
)

// Garante que LicenseRepo implementa repository.LicenseRepository.
var _ repository.LicenseRepository = (*LicenseRepo)(nil)

// LicenseRepo implementação da porta LicenseRepository sobre PostgreSQL.
// portal_id tem constraint única: é a chave de junção com o Portal de Licenças.
type LicenseRepo struct {
	db Querier
}

// NewLicenseRepository constrói o adaptador de persistência de licenças.
func NewLicenseRepository(db Querier) *LicenseRepo {
	return &LicenseRepo{db: db}
}

const licenseColumns = `id, customer_id, license_type, status, portal_id, created_at, updated_at`

// Create persiste uma nova licença. Devolve domain.ErrDuplicate se o portal_id
// já estiver registrado.
func (r *LicenseRepo) Create(license *entity.License) error {
	query := `
		INSERT INTO licenses (` + licenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(context.Background(), query,
		license.ID, license.CustomerID, license.LicenseType, license.Status,
		license.PortalID, license.CreatedAt, license.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: portal_id %s", domain.ErrDuplicate, license.PortalID)
		}
		return fmt.Errorf("insert license: %w", err)
	}
	return nil
}

// GetByID obtém uma licença por ID. Devolve nil, nil se não existir.
func (r *LicenseRepo) GetByID(id string) (*entity.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE id = $1`
	l, err := r.scanOne(r.db.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}
	return l, nil
}

// FindByPortalID localiza a licença pelo id do sistema externo.
func (r *LicenseRepo) FindByPortalID(portalID string) (*entity.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE portal_id = $1`
	l, err := r.scanOne(r.db.QueryRow(context.Background(), query, portalID))
	if err != nil {
		return nil, fmt.Errorf("find license by portal id: %w", err)
	}
	return l, nil
}

// ListByCustomer lista as licenças de um cliente.
func (r *LicenseRepo) ListByCustomer(customerID string) ([]*entity.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE customer_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(context.Background(), query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list licenses by customer: %w", err)
	}
	defer rows.Close()

	var licenses []*entity.License
	for rows.Next() {
		var l entity.License
		if err := rows.Scan(
			&l.ID, &l.CustomerID, &l.LicenseType, &l.Status, &l.PortalID,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		licenses = append(licenses, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate licenses: %w", err)
	}
	return licenses, nil
}

func (r *LicenseRepo) scanOne(row pgx.Row) (*entity.License, error) {
	var l entity.License
	err := row.Scan(
		&l.ID, &l.CustomerID, &l.LicenseType, &l.Status, &l.PortalID,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	"github.com/tu-usuario/whats-middleware/internal/domain/repository"
)

// Garante que CustomerRepo implementa repository.CustomerRepository.
var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementação da porta CustomerRepository sobre PostgreSQL.
// Telefone não tem constraint única: reimportações criam duplicatas.
type CustomerRepo struct {
	db Querier
}

// NewCustomerRepository constrói o adaptador de persistência de clientes.
func NewCustomerRepository(db Querier) *CustomerRepo {
	return &CustomerRepo{db: db}
}

const customerColumns = `id, company_id, name, email, phone, license_type, company, active, created_at, updated_at`

// Create persiste um novo cliente.
func (r *CustomerRepo) Create(customer *entity.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(context.Background(), query,
		customer.ID, customer.CompanyID, customer.Name, customer.Email,
		customer.Phone, customer.LicenseType, customer.Company, customer.Active,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtém um cliente por ID. Devolve nil, nil se não existir.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	c, err := r.scanOne(r.db.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// FindByPhone localiza um cliente pelo telefone canônico. Com duplicatas,
// devolve o mais antigo (primeiro importado).
func (r *CustomerRepo) FindByPhone(phone string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1 ORDER BY created_at LIMIT 1`
	c, err := r.scanOne(r.db.QueryRow(context.Background(), query, phone))
	if err != nil {
		return nil, fmt.Errorf("find customer by phone: %w", err)
	}
	return c, nil
}

// FindByEmail localiza um cliente pelo email.
func (r *CustomerRepo) FindByEmail(email string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1 ORDER BY created_at LIMIT 1`
	c, err := r.scanOne(r.db.QueryRow(context.Background(), query, email))
	if err != nil {
		return nil, fmt.Errorf("find customer by email: %w", err)
	}
	return c, nil
}

// ListByLicenseType lista clientes de um tipo de licença, opcionalmente só ativos.
func (r *CustomerRepo) ListByLicenseType(licenseType entity.LicenseType, onlyActive bool) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE license_type = $1`
	if onlyActive {
		query += ` AND active`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(context.Background(), query, licenseType)
	if err != nil {
		return nil, fmt.Errorf("list customers by license type: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListByCompany lista clientes de uma empresa com paginação.
func (r *CustomerRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE company_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers by company: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// List lista clientes com paginação.
func (r *CustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Update atualiza um cliente existente.
func (r *CustomerRepo) Update(customer *entity.Customer) error {
	query := `
		UPDATE customers
		SET company_id = $2, name = $3, email = $4, phone = $5, license_type = $6,
		    company = $7, active = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.db.Exec(context.Background(), query,
		customer.ID, customer.CompanyID, customer.Name, customer.Email,
		customer.Phone, customer.LicenseType, customer.Company, customer.Active,
		customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update customer %s: não encontrado", customer.ID)
	}
	return nil
}

func (r *CustomerRepo) scanOne(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.LicenseType,
		&c.Company, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepo) scanAll(rows pgx.Rows) ([]*entity.Customer, error) {
	var customers []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(
			&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.LicenseType,
			&c.Company, &c.Active, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

package lab

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sphe667/ViewLab/internal/db"
)

// Repository is the inventory store. Every method runs on the transaction
// bound to ctx when there is one.
type Repository interface {
	GetLab(ctx context.Context, id int64) (*Lab, error)
	ListLabs(ctx context.Context, filter Filter) ([]*Lab, int, error)
	GetComputer(ctx context.Context, id int64) (*Computer, error)
	ListComputers(ctx context.Context, labID int64) ([]*Computer, error)
	ListAvailableComputers(ctx context.Context, labID *int64) ([]*Computer, error)

	// SetBooked flips is_booked only if it currently holds the opposite value.
	SetBooked(ctx context.Context, computerID int64, booked bool) error

	// EnsureLab returns the id of the lab named name, creating it if needed.
	EnsureLab(ctx context.Context, name string) (id int64, created bool, err error)
	// AddComputers appends computers to a lab until it holds total of them.
	AddComputers(ctx context.Context, labID int64, total int) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) GetLab(ctx context.Context, id int64) (*Lab, error) {
	const query = `
		SELECT l.id, l.name, l.created_at,
			count(c.id),
			count(c.id) FILTER (WHERE NOT c.is_booked)
		FROM labs l
		LEFT JOIN computers c ON c.lab_id = l.id
		WHERE l.id = $1
		GROUP BY l.id
	`
	var l Lab
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, id).
		Scan(&l.ID, &l.Name, &l.CreatedAt, &l.ComputerCount, &l.AvailableCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get lab failed: %w", err)
	}
	return &l, nil
}

func (r *pgxRepository) ListLabs(ctx context.Context, filter Filter) ([]*Lab, int, error) {
	query := psql.Select(
		"l.id", "l.name", "l.created_at", "count(c.id)",
		"count(*) OVER() AS total_count",
	).
		From("labs l").
		LeftJoin("computers c ON c.lab_id = l.id").
		GroupBy("l.id").
		OrderBy("l.name ASC")

	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"l.name": "%" + filter.Name + "%"})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list labs query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list labs failed: %w", err)
	}
	defer rows.Close()

	var labs []*Lab
	var total int
	for rows.Next() {
		var l Lab
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.ComputerCount, &total); err != nil {
			return nil, 0, fmt.Errorf("scan lab failed: %w", err)
		}
		labs = append(labs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list labs failed: %w", err)
	}
	return labs, total, nil
}

func computerColumns() []string {
	return []string{"c.id", "c.lab_id", "l.name", "c.number", "c.is_booked", "c.created_at"}
}

func (r *pgxRepository) GetComputer(ctx context.Context, id int64) (*Computer, error) {
	sql, args, err := psql.Select(computerColumns()...).
		From("computers c").
		Join("labs l ON l.id = c.lab_id").
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get computer query failed: %w", err)
	}

	var c Computer
	err = db.Conn(ctx, r.pool).QueryRow(ctx, sql, args...).
		Scan(&c.ID, &c.LabID, &c.LabName, &c.Number, &c.IsBooked, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrComputerNotFound
		}
		return nil, fmt.Errorf("get computer failed: %w", err)
	}
	return &c, nil
}

func (r *pgxRepository) ListComputers(ctx context.Context, labID int64) ([]*Computer, error) {
	return r.listComputers(ctx, squirrel.Eq{"c.lab_id": labID})
}

func (r *pgxRepository) ListAvailableComputers(ctx context.Context, labID *int64) ([]*Computer, error) {
	where := squirrel.And{squirrel.Eq{"c.is_booked": false}}
	if labID != nil {
		where = append(where, squirrel.Eq{"c.lab_id": *labID})
	}
	return r.listComputers(ctx, where)
}

func (r *pgxRepository) listComputers(ctx context.Context, where squirrel.Sqlizer) ([]*Computer, error) {
	sql, args, err := psql.Select(computerColumns()...).
		From("computers c").
		Join("labs l ON l.id = c.lab_id").
		Where(where).
		OrderBy("c.lab_id", "c.number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list computers query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list computers failed: %w", err)
	}
	defer rows.Close()

	var computers []*Computer
	for rows.Next() {
		var c Computer
		if err := rows.Scan(&c.ID, &c.LabID, &c.LabName, &c.Number, &c.IsBooked, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan computer failed: %w", err)
		}
		computers = append(computers, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list computers failed: %w", err)
	}
	return computers, nil
}

func (r *pgxRepository) SetBooked(ctx context.Context, computerID int64, booked bool) error {
	// Compare-and-swap: the row lock taken by UPDATE makes a concurrent
	// caller wait, then re-check is_booked against the committed value.
	sql, args, err := psql.Update("computers").
		Set("is_booked", booked).
		Where(squirrel.Eq{"id": computerID, "is_booked": !booked}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set booked query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set booked failed: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// Nothing changed: the computer is missing or already in that state.
	if _, err := r.GetComputer(ctx, computerID); err != nil {
		return err
	}
	if booked {
		return ErrComputerUnavailable
	}
	return ErrComputerStateConflict
}

func (r *pgxRepository) EnsureLab(ctx context.Context, name string) (int64, bool, error) {
	q := db.Conn(ctx, r.pool)

	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO labs (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`, name).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("insert lab failed: %w", err)
	}

	if err := q.QueryRow(ctx, `SELECT id FROM labs WHERE name = $1`, name).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("find lab %q failed: %w", name, err)
	}
	return id, false, nil
}

func (r *pgxRepository) AddComputers(ctx context.Context, labID int64, total int) (int, error) {
	q := db.Conn(ctx, r.pool)

	// Lock the lab row so concurrent provisioners number computers in turn.
	// The count runs as its own statement so it sees rows committed while
	// this transaction waited for the lock.
	if err := q.QueryRow(ctx, `SELECT id FROM labs WHERE id = $1 FOR UPDATE`, labID).Scan(&labID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("lock lab failed: %w", err)
	}

	var current int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM computers WHERE lab_id = $1`, labID).Scan(&current); err != nil {
		return 0, fmt.Errorf("count computers failed: %w", err)
	}
	if current >= total {
		return 0, nil
	}

	ct, err := q.Exec(ctx, `
		INSERT INTO computers (lab_id, number)
		SELECT $1, n FROM generate_series($2::int, $3::int) AS n
	`, labID, current+1, total)
	if err != nil {
		return 0, fmt.Errorf("add computers failed: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

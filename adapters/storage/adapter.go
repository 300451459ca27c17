// Package storage provides the SQLite-backed reference price store and
// formula configuration store. It is the only part of the system that
// performs I/O; the core packages consume its output as immutable
// snapshots.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"glassquote/core/catalog"
	"glassquote/core/configstore"
	"glassquote/core/formula"
	"glassquote/core/types"
	"glassquote/internal/errors"
	"glassquote/internal/logging"
)

// Store is the SQLite persistence layer. It implements
// configstore.Backend and loads reference pricing as catalog
// snapshots.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open connects to the database at path, applies pragmas, retries
// transient failures, and runs pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 30 * time.Second
	retryPolicy.MaxInterval = 5 * time.Second

	err := backoff.Retry(
		func() error {
			var err error
			db, err = sqlx.ConnectContext(ctx, "sqlite", path)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if _, err = db.ExecContext(ctx, `
				PRAGMA journal_mode = WAL;
				PRAGMA foreign_keys = ON;
				PRAGMA busy_timeout = 5000;
			`); err != nil {
				db.Close()
				return fmt.Errorf("set pragmas: %w", err)
			}
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
	)
	if err != nil {
		return nil, errors.Storage("open database", err)
	}

	if err := runMigrations(ctx, db.DB); err != nil {
		db.Close()
		return nil, errors.Storage("run migrations", err)
	}

	return &Store{db: db, logger: logging.Logger}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

type priceEntryRow struct {
	Thickness     string `db:"thickness"`
	GlassType     string `db:"glass_type"`
	BasePrice     string `db:"base_price"`
	PolishPrice   string `db:"polish_price"`
	OnlyTempered  bool   `db:"only_tempered"`
	NoPolish      bool   `db:"no_polish"`
	NeverTempered bool   `db:"never_tempered"`
}

type markupRow struct {
	Name       string `db:"name"`
	Percentage string `db:"percentage"`
}

type bevelRow struct {
	Thickness    string `db:"thickness"`
	PricePerInch string `db:"price_per_inch"`
}

type cornerRow struct {
	Thickness      string `db:"thickness"`
	ClipSize       string `db:"clip_size"`
	PricePerCorner string `db:"price_per_corner"`
}

// LoadCatalog reads the full reference price table into an in-memory
// catalog snapshot. Callers refresh by loading again; the snapshot
// itself is read-only for the duration of a calculation.
func (s *Store) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	c := catalog.NewCatalog()

	var prices []priceEntryRow
	if err := s.db.SelectContext(ctx, &prices, `
		SELECT thickness, glass_type, base_price, polish_price,
		       only_tempered, no_polish, never_tempered
		FROM price_entries`); err != nil {
		return nil, errors.Storage("load price entries", err)
	}
	for _, row := range prices {
		base, err := decimal.NewFromString(row.BasePrice)
		if err != nil {
			return nil, errors.Storage("parse base price for "+row.Thickness+"/"+row.GlassType, err)
		}
		polish, err := decimal.NewFromString(row.PolishPrice)
		if err != nil {
			return nil, errors.Storage("parse polish price for "+row.Thickness+"/"+row.GlassType, err)
		}
		spec := types.GlassSpec{
			Thickness: types.Thickness(row.Thickness),
			Type:      types.GlassType(row.GlassType),
		}
		c.SetPriceEntry(spec, catalog.PriceEntry{
			BasePrice:     base,
			PolishPrice:   polish,
			OnlyTempered:  row.OnlyTempered,
			NoPolish:      row.NoPolish,
			NeverTempered: row.NeverTempered,
		})
	}

	var markups []markupRow
	if err := s.db.SelectContext(ctx, &markups, `SELECT name, percentage FROM markups`); err != nil {
		return nil, errors.Storage("load markups", err)
	}
	for _, row := range markups {
		pct, err := decimal.NewFromString(row.Percentage)
		if err != nil {
			return nil, errors.Storage("parse markup "+row.Name, err)
		}
		c.SetMarkup(row.Name, pct)
	}

	var bevels []bevelRow
	if err := s.db.SelectContext(ctx, &bevels, `SELECT thickness, price_per_inch FROM beveled_prices`); err != nil {
		return nil, errors.Storage("load beveled prices", err)
	}
	for _, row := range bevels {
		rate, err := decimal.NewFromString(row.PricePerInch)
		if err != nil {
			return nil, errors.Storage("parse bevel rate for "+row.Thickness, err)
		}
		c.SetBeveledPrice(types.Thickness(row.Thickness), rate)
	}

	var corners []cornerRow
	if err := s.db.SelectContext(ctx, &corners, `SELECT thickness, clip_size, price_per_corner FROM corner_prices`); err != nil {
		return nil, errors.Storage("load corner prices", err)
	}
	for _, row := range corners {
		rate, err := decimal.NewFromString(row.PricePerCorner)
		if err != nil {
			return nil, errors.Storage("parse corner rate for "+row.Thickness, err)
		}
		c.SetCornerPrice(types.Thickness(row.Thickness), types.ClipSize(row.ClipSize), rate)
	}

	if errs := c.Validate(catalog.DefaultValidationRules()); len(errs) > 0 {
		for _, err := range errs {
			s.logger.Warn("catalog integrity issue", zap.Error(err))
		}
	}

	return c, nil
}

type formulaConfigRow struct {
	Mode             string `db:"mode"`
	DivisorValue     string `db:"divisor_value"`
	MultiplierValue  string `db:"multiplier_value"`
	CustomExpression string `db:"custom_expression"`
	CompBase         bool   `db:"comp_base"`
	CompPolish       bool   `db:"comp_polish"`
	CompBevel        bool   `db:"comp_bevel"`
	CompCorners      bool   `db:"comp_corners"`
	CompTempered     bool   `db:"comp_tempered"`
	CompShape        bool   `db:"comp_shape"`
	CompContractor   bool   `db:"comp_contractor"`
}

func (r formulaConfigRow) toConfig() (formula.Config, error) {
	divisor, err := decimal.NewFromString(r.DivisorValue)
	if err != nil {
		return formula.Config{}, errors.Storage("parse divisor value", err)
	}
	multiplier, err := decimal.NewFromString(r.MultiplierValue)
	if err != nil {
		return formula.Config{}, errors.Storage("parse multiplier value", err)
	}
	return formula.Config{
		Mode:             formula.Mode(r.Mode),
		DivisorValue:     divisor,
		MultiplierValue:  multiplier,
		CustomExpression: r.CustomExpression,
		Components: formula.ComponentToggles{
			Base:               r.CompBase,
			Polish:             r.CompPolish,
			Bevel:              r.CompBevel,
			Corners:            r.CompCorners,
			TemperedMarkup:     r.CompTempered,
			ShapeMarkup:        r.CompShape,
			ContractorDiscount: r.CompContractor,
		},
	}, nil
}

// GetActive implements configstore.Backend
func (s *Store) GetActive(ctx context.Context) (formula.Config, error) {
	var row formulaConfigRow
	err := s.db.GetContext(ctx, &row, `
		SELECT mode, divisor_value, multiplier_value, custom_expression,
		       comp_base, comp_polish, comp_bevel, comp_corners,
		       comp_tempered, comp_shape, comp_contractor
		FROM formula_config WHERE id = 1`)
	if err == sql.ErrNoRows {
		return formula.Config{}, errors.NotFound("formula config", "active")
	}
	if err != nil {
		return formula.Config{}, errors.Storage("load formula config", err)
	}
	return row.toConfig()
}

// ReplaceActive implements configstore.Backend. The active-row replace
// and the audit append share one transaction, so a calculation sees
// either the old or the new configuration in full.
func (s *Store) ReplaceActive(ctx context.Context, cfg formula.Config, entry configstore.AuditEntry) error {
	previousJSON, err := json.Marshal(entry.Previous)
	if err != nil {
		return errors.Storage("encode previous config snapshot", err)
	}
	newJSON, err := json.Marshal(entry.New)
	if err != nil {
		return errors.Storage("encode new config snapshot", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO formula_config (
			id, mode, divisor_value, multiplier_value, custom_expression,
			comp_base, comp_polish, comp_bevel, comp_corners,
			comp_tempered, comp_shape, comp_contractor,
			updated_by, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			mode = excluded.mode,
			divisor_value = excluded.divisor_value,
			multiplier_value = excluded.multiplier_value,
			custom_expression = excluded.custom_expression,
			comp_base = excluded.comp_base,
			comp_polish = excluded.comp_polish,
			comp_bevel = excluded.comp_bevel,
			comp_corners = excluded.comp_corners,
			comp_tempered = excluded.comp_tempered,
			comp_shape = excluded.comp_shape,
			comp_contractor = excluded.comp_contractor,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at`,
		cfg.Mode.String(), cfg.DivisorValue.String(), cfg.MultiplierValue.String(), cfg.CustomExpression,
		cfg.Components.Base, cfg.Components.Polish, cfg.Components.Bevel, cfg.Components.Corners,
		cfg.Components.TemperedMarkup, cfg.Components.ShapeMarkup, cfg.Components.ContractorDiscount,
		entry.Actor, entry.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return errors.Storage("replace active formula config", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO formula_audit (id, previous_config, new_config, actor, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID, string(previousJSON), string(newJSON), entry.Actor,
		entry.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return errors.Storage("append audit entry", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("commit formula update", err)
	}
	return nil
}

type auditRow struct {
	ID             string `db:"id"`
	PreviousConfig string `db:"previous_config"`
	NewConfig      string `db:"new_config"`
	Actor          string `db:"actor"`
	CreatedAt      string `db:"created_at"`
}

// ListAudit implements configstore.Backend
func (s *Store) ListAudit(ctx context.Context, limit int) ([]configstore.AuditEntry, error) {
	query := `SELECT id, previous_config, new_config, actor, created_at
		FROM formula_audit ORDER BY created_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []auditRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Storage("list audit entries", err)
	}

	entries := make([]configstore.AuditEntry, 0, len(rows))
	for _, row := range rows {
		var entry configstore.AuditEntry
		entry.ID = row.ID
		entry.Actor = row.Actor

		if err := json.Unmarshal([]byte(row.PreviousConfig), &entry.Previous); err != nil {
			return nil, errors.Storage("decode previous snapshot for audit "+row.ID, err)
		}
		if err := json.Unmarshal([]byte(row.NewConfig), &entry.New); err != nil {
			return nil, errors.Storage("decode new snapshot for audit "+row.ID, err)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
		if err != nil {
			return nil, errors.Storage("parse timestamp for audit "+row.ID, err)
		}
		entry.CreatedAt = createdAt

		entries = append(entries, entry)
	}
	return entries, nil
}

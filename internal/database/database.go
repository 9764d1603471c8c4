package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

var (
	// ErrPropertyNotFound is returned when a single-field update targets an
	// id that does not exist. Unlike batch-load failures this is never
	// logged-and-swallowed.
	ErrPropertyNotFound = errors.New("property not found")
)

type Database struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewDatabase(dbPath string, logger *logrus.Logger) (*Database, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	// The pragma goes in the DSN so the audit_log -> properties reference is
	// enforced on every pooled connection, not only the first one.
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	return &Database{db: db, logger: logger}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

// RunMigrations creates the properties and audit_log tables. Range checks on
// non-negative numerics and enum checks on the classification columns live
// in the schema; completeness of critical fields is tracked through
// has_critical_gaps instead of NOT NULL so that incomplete records can be
// persisted and reviewed.
func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			fecha_alta TIMESTAMP,
			status TEXT CHECK (status IN ('enPromocion', 'conIntencion', 'vendidas') OR status = ''),
			tipo_operacion TEXT CHECK (tipo_operacion IN ('venta', 'renta', 'traspaso', 'opcion') OR tipo_operacion = ''),
			tipo_contrato TEXT CHECK (tipo_contrato IN ('exclusiva', 'opcion', 'abierta') OR tipo_contrato = ''),
			en_internet BOOLEAN DEFAULT 0,
			clave TEXT,
			clave_oficina TEXT,
			subtipo_propiedad TEXT,
			calle TEXT,
			numero TEXT,
			colonia TEXT,
			municipio TEXT,
			latitud REAL,
			longitud REAL,
			codigo_postal TEXT,
			precio REAL CHECK (precio >= 0),
			comision REAL,
			comision_compartir_externas REAL,
			m2_construccion REAL CHECK (m2_construccion >= 0),
			m2_terreno REAL CHECK (m2_terreno >= 0),
			recamaras INTEGER CHECK (recamaras >= 0),
			banos_totales REAL NOT NULL DEFAULT 0 CHECK (banos_totales >= 0),
			cocina BOOLEAN DEFAULT 0,
			niveles_construidos INTEGER,
			edad INTEGER,
			estacionamientos INTEGER,
			descripcion TEXT,
			nombre_agente TEXT,
			apellido_paterno_agente TEXT,
			apellido_materno_agente TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			has_critical_gaps BOOLEAN DEFAULT 0
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create properties table: %w", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			property_id TEXT NOT NULL REFERENCES properties(id),
			field_name TEXT NOT NULL,
			old_value TEXT,
			new_value TEXT,
			changed_by TEXT,
			change_source TEXT,
			change_timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create audit_log table: %w", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_critical_gaps
		ON properties(has_critical_gaps);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_audit_log_property
		ON audit_log(property_id);
	`)
	if err != nil {
		return err
	}

	return nil
}

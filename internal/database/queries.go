package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fm-dev-mx/real-estate-insights/internal/models"
)

// GetProperties builds a predicate conjunction over the optional filters and
// returns the matching records. Absent filters impose no constraint. A
// connection or query failure yields an empty result set, never an error;
// the failure is logged for the operator.
func (d *Database) GetProperties(filter models.PropertyFilter) []models.Property {
	query := `
        SELECT id, fecha_alta, status, tipo_operacion, tipo_contrato, en_internet,
               clave, clave_oficina, subtipo_propiedad, calle, numero,
               colonia, municipio, latitud, longitud, codigo_postal,
               precio, comision, comision_compartir_externas, m2_construccion,
               m2_terreno, recamaras, banos_totales, cocina,
               niveles_construidos, edad, estacionamientos, descripcion,
               nombre_agente, apellido_paterno_agente, apellido_materno_agente,
               COALESCE(created_at, CURRENT_TIMESTAMP) as created_at,
               COALESCE(updated_at, CURRENT_TIMESTAMP) as updated_at,
               COALESCE(has_critical_gaps, 0) as has_critical_gaps
        FROM properties
        WHERE 1=1
    `
	var args []interface{}

	if filter.MinPrice != nil {
		query += " AND precio >= ?"
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query += " AND precio <= ?"
		args = append(args, *filter.MaxPrice)
	}
	query, args = appendSetFilter(query, args, "tipo_operacion", filter.OperationTypes)
	query, args = appendSetFilter(query, args, "subtipo_propiedad", filter.PropertyTypes)
	query, args = appendSetFilter(query, args, "status", filter.Statuses)
	query, args = appendSetFilter(query, args, "tipo_contrato", filter.ContractTypes)
	if filter.MinBedrooms != nil {
		query += " AND recamaras >= ?"
		args = append(args, *filter.MinBedrooms)
	}
	if filter.MinBathrooms != nil {
		query += " AND banos_totales >= ?"
		args = append(args, *filter.MinBathrooms)
	}
	if filter.MaxAgeYears != nil {
		query += " AND edad <= ?"
		args = append(args, *filter.MaxAgeYears)
	}
	if filter.MinConstructionM2 != nil {
		query += " AND m2_construccion >= ?"
		args = append(args, *filter.MinConstructionM2)
	}
	if filter.MinLandM2 != nil {
		query += " AND m2_terreno >= ?"
		args = append(args, *filter.MinLandM2)
	}
	if filter.HasParking != nil {
		if *filter.HasParking {
			query += " AND estacionamientos > 0"
		} else {
			query += " AND (estacionamientos IS NULL OR estacionamientos = 0)"
		}
	}
	if filter.MinCommission != nil {
		query += " AND comision >= ?"
		args = append(args, *filter.MinCommission)
	}
	if len(filter.DescriptionKeywords) > 0 {
		var conditions []string
		for _, keyword := range filter.DescriptionKeywords {
			keyword = strings.TrimSpace(keyword)
			if keyword == "" {
				continue
			}
			conditions = append(conditions, "LOWER(descripcion) LIKE '%' || LOWER(?) || '%'")
			args = append(args, keyword)
		}
		if len(conditions) > 0 {
			query += " AND (" + strings.Join(conditions, " OR ") + ")"
		}
	}
	if filter.CriticalGapsOnly {
		query += " AND has_critical_gaps = 1"
	}

	query += " ORDER BY id"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		d.logger.WithError(err).WithField("stage", "db_retrieve").Error("Failed to query properties")
		return []models.Property{}
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			// One corrupted row must not blank the whole dashboard.
			d.logger.WithError(err).WithField("stage", "db_retrieve").Error("Skipping unscannable property row")
			continue
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		d.logger.WithError(err).WithField("stage", "db_retrieve").Error("Failed while iterating properties")
		return []models.Property{}
	}
	return properties
}

// GetProperty returns one record by id, or ErrPropertyNotFound.
func (d *Database) GetProperty(id string) (*models.Property, error) {
	query := `
        SELECT id, fecha_alta, status, tipo_operacion, tipo_contrato, en_internet,
               clave, clave_oficina, subtipo_propiedad, calle, numero,
               colonia, municipio, latitud, longitud, codigo_postal,
               precio, comision, comision_compartir_externas, m2_construccion,
               m2_terreno, recamaras, banos_totales, cocina,
               niveles_construidos, edad, estacionamientos, descripcion,
               nombre_agente, apellido_paterno_agente, apellido_materno_agente,
               COALESCE(created_at, CURRENT_TIMESTAMP) as created_at,
               COALESCE(updated_at, CURRENT_TIMESTAMP) as updated_at,
               COALESCE(has_critical_gaps, 0) as has_critical_gaps
        FROM properties
        WHERE id = ?
    `
	rows, err := d.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query property %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("property %s: %w", id, ErrPropertyNotFound)
	}
	return scanProperty(rows)
}

// GetAuditTrail returns the correction history for one property, newest
// first.
func (d *Database) GetAuditTrail(propertyID string) ([]models.AuditEntry, error) {
	rows, err := d.db.Query(`
		SELECT id, property_id, field_name,
		       COALESCE(old_value, ''), COALESCE(new_value, ''),
		       COALESCE(changed_by, ''), COALESCE(change_source, ''),
		       COALESCE(change_timestamp, CURRENT_TIMESTAMP)
		FROM audit_log
		WHERE property_id = ?
		ORDER BY id DESC
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trail for %s: %w", propertyID, err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var ts string
		if err := rows.Scan(&e.ID, &e.PropertyID, &e.FieldName, &e.OldValue,
			&e.NewValue, &e.ChangedBy, &e.ChangeSource, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if t, err := parseTimestamp(ts); err == nil {
			e.ChangeTimestamp = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountCriticalGaps returns how many persisted records are flagged
// incomplete.
func (d *Database) CountCriticalGaps() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM properties WHERE has_critical_gaps = 1").Scan(&count)
	return count, err
}

func appendSetFilter(query string, args []interface{}, column string, values []string) (string, []interface{}) {
	var cleaned []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return query, args
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cleaned)), ",")
	query += fmt.Sprintf(" AND %s IN (%s)", column, placeholders)
	for _, v := range cleaned {
		args = append(args, v)
	}
	return query, args
}

func scanProperty(rows *sql.Rows) (*models.Property, error) {
	var p models.Property
	var fechaAlta, createdAt, updatedAt sql.NullString
	var status, tipoOperacion, tipoContrato, clave, claveOficina sql.NullString
	var subtipo, calle, numero, colonia, municipio, codigoPostal sql.NullString
	var descripcion, nombreAgente, apellidoP, apellidoM sql.NullString
	var latitud, longitud, precio, comision, comisionExternas sql.NullFloat64
	var m2Construccion, m2Terreno, banosTotales sql.NullFloat64
	var recamaras, niveles, edad, estacionamientos sql.NullInt64
	var enInternet, cocina, hasCriticalGaps sql.NullBool

	err := rows.Scan(
		&p.ID, &fechaAlta, &status, &tipoOperacion, &tipoContrato, &enInternet,
		&clave, &claveOficina, &subtipo, &calle, &numero,
		&colonia, &municipio, &latitud, &longitud, &codigoPostal,
		&precio, &comision, &comisionExternas, &m2Construccion,
		&m2Terreno, &recamaras, &banosTotales, &cocina,
		&niveles, &edad, &estacionamientos, &descripcion,
		&nombreAgente, &apellidoP, &apellidoM,
		&createdAt, &updatedAt, &hasCriticalGaps,
	)
	if err != nil {
		return nil, err
	}

	p.Status = status.String
	p.TipoOperacion = tipoOperacion.String
	p.TipoContrato = tipoContrato.String
	p.Clave = clave.String
	p.ClaveOficina = claveOficina.String
	p.SubtipoPropiedad = subtipo.String
	p.Calle = calle.String
	p.Numero = numero.String
	p.Colonia = colonia.String
	p.Municipio = municipio.String
	p.CodigoPostal = codigoPostal.String
	p.Descripcion = descripcion.String
	p.NombreAgente = nombreAgente.String
	p.ApellidoPaternoAgente = apellidoP.String
	p.ApellidoMaternoAgente = apellidoM.String
	p.EnInternet = enInternet.Valid && enInternet.Bool
	p.Cocina = cocina.Valid && cocina.Bool
	p.HasCriticalGaps = hasCriticalGaps.Valid && hasCriticalGaps.Bool

	if latitud.Valid {
		v := latitud.Float64
		p.Latitud = &v
	}
	if longitud.Valid {
		v := longitud.Float64
		p.Longitud = &v
	}
	if precio.Valid {
		v := precio.Float64
		p.Precio = &v
	}
	if comision.Valid {
		v := comision.Float64
		p.Comision = &v
	}
	if comisionExternas.Valid {
		v := comisionExternas.Float64
		p.ComisionCompartirExternas = &v
	}
	if m2Construccion.Valid {
		v := m2Construccion.Float64
		p.M2Construccion = &v
	}
	if m2Terreno.Valid {
		v := m2Terreno.Float64
		p.M2Terreno = &v
	}
	if banosTotales.Valid {
		p.BanosTotales = banosTotales.Float64
	}
	if recamaras.Valid {
		v := int(recamaras.Int64)
		p.Recamaras = &v
	}
	if niveles.Valid {
		v := int(niveles.Int64)
		p.NivelesConstruidos = &v
	}
	if edad.Valid {
		v := int(edad.Int64)
		p.Edad = &v
	}
	if estacionamientos.Valid {
		v := int(estacionamientos.Int64)
		p.Estacionamientos = &v
	}

	if fechaAlta.Valid && fechaAlta.String != "" {
		if t, err := parseTimestamp(fechaAlta.String); err == nil {
			p.FechaAlta = &t
		}
	}
	if createdAt.Valid && createdAt.String != "" {
		if t, err := parseTimestamp(createdAt.String); err == nil {
			p.CreatedAt = t
		}
	}
	if updatedAt.Valid && updatedAt.String != "" {
		if t, err := parseTimestamp(updatedAt.String); err == nil {
			p.UpdatedAt = t
		}
	}

	return &p, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

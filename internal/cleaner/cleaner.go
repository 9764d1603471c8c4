// Package cleaner normalizes raw inventory exports into schema-conformant
// property records: header renames, per-type coercion with safe fallbacks,
// derived fields and final projection onto the schema registry.
package cleaner

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fm-dev-mx/real-estate-insights/internal/models"
)

// Raw full/half bath columns only exist between rename and derivation; they
// never appear in the output record set.
const (
	rawFullBaths = "banos"
	rawHalfBaths = "medios_banos"
)

// headerAliases maps the known source header variants, including the
// tolerated casing near-duplicates the portal export ships with, to canonical
// column names. Headers absent from this map and from the registry are
// dropped.
var headerAliases = map[string]string{
	"fechaAlta":        "fecha_alta",
	"tipoOperacion":    "tipo_operacion",
	"tipoDeContrato":   "tipo_contrato",
	"enInternet":       "en_internet",
	"claveOficina":     "clave_oficina",
	"subtipoPropiedad": "subtipo_propiedad",
	"codigoPostal":     "codigo_postal",
	"comisionACompartirInmobiliariasExternas": "comision_compartir_externas",
	"m2C":                "m2_construccion",
	"m2T":                "m2_terreno",
	"nivelesConstruidos": "niveles_construidos",
	"apellidoP":          "apellido_paterno_agente",
	"apellidoM":          "apellido_materno_agente",
	"nombre":             "nombre_agente",
	"banos":              rawFullBaths,
	"banios":             rawFullBaths,
	"Banios":             rawFullBaths,
	"medios_banos":       rawHalfBaths,
	"mediosbanos":        rawHalfBaths,
	"medios_banios":      rawHalfBaths,
	"mediosBanios":       rawHalfBaths,
}

// denyList holds known-irrelevant source columns dropped when present.
var denyList = map[string]bool{
	"numeroLlaves":           true,
	"cuotaMantenimiento":     true,
	"institucionHipotecaria": true,
}

// Cleaner turns one raw inventory export into a normalized record set.
type Cleaner struct {
	logger *logrus.Logger
}

func NewCleaner(logger *logrus.Logger) *Cleaner {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Cleaner{logger: logger}
}

// CleanFile reads a CSV inventory export and returns the normalized records.
// A missing or unreadable file is a structural failure and returns an error;
// individual bad cells never do, they fall back to the column's safe default.
func (c *Cleaner) CleanFile(path string) ([]*models.Property, error) {
	log := c.logger.WithField("stage", "cleaning")

	if _, err := os.Stat(path); err != nil {
		log.WithError(err).Errorf("Source file does not exist: %s", path)
		return nil, fmt.Errorf("source file %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		log.WithError(err).Error("Failed to open source file")
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()

	records, err := c.Clean(f)
	if err != nil {
		return nil, err
	}
	log.WithField("records", len(records)).Infof("Cleaning completed for %s", path)
	return records, nil
}

// Clean normalizes a raw tabular dataset read from r.
func (c *Cleaner) Clean(r io.Reader) ([]*models.Property, error) {
	log := c.logger.WithField("stage", "cleaning")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		log.WithError(err).Error("Failed to read header row")
		return nil, fmt.Errorf("read header row: %w", err)
	}

	columns := renameHeaders(header)
	log.WithField("columns", len(columns)).Info("Columns renamed")

	var (
		records   []*models.Property
		fallbacks int
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row is a per-row issue, not a structural one.
			log.WithError(err).Warn("Skipping unreadable row")
			continue
		}

		cells := make(map[string]string, len(columns))
		for i, col := range columns {
			if col == "" || i >= len(row) {
				continue
			}
			cells[col] = row[i]
		}

		record, n := buildRecord(cells)
		fallbacks += n
		records = append(records, record)
	}

	if fallbacks > 0 {
		log.WithField("cell_fallbacks", fallbacks).Warn("Some cells could not be parsed and were defaulted")
	}
	return records, nil
}

// renameHeaders maps source headers to canonical (or raw bath) names. The
// returned slice is positional; dropped columns are marked with "".
func renameHeaders(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if denyList[h] {
			continue
		}
		if canonical, ok := headerAliases[h]; ok {
			out[i] = canonical
			continue
		}
		if isOutputColumn(h) {
			out[i] = h
		}
	}
	return out
}

// isOutputColumn reports whether a header is already canonical. banos_totales
// is deliberately excluded: it is derived-only and never read from source, so
// re-running the cleaner on already-merged data cannot resurrect stale
// bathroom counts.
func isOutputColumn(h string) bool {
	switch h {
	case "id", "fecha_alta", "status", "tipo_operacion", "tipo_contrato",
		"en_internet", "clave", "clave_oficina", "subtipo_propiedad", "calle",
		"numero", "colonia", "municipio", "latitud", "longitud",
		"codigo_postal", "precio", "comision", "comision_compartir_externas",
		"m2_construccion", "m2_terreno", "recamaras", "cocina",
		"niveles_construidos", "edad", "estacionamientos", "descripcion",
		"nombre_agente", "apellido_paterno_agente", "apellido_materno_agente":
		return true
	}
	return false
}

// buildRecord coerces one renamed row into a Property, counting how many
// cells fell back to a default.
func buildRecord(cells map[string]string) (*models.Property, int) {
	fallbacks := 0
	note := func(ok bool) {
		if !ok {
			fallbacks++
		}
	}

	p := &models.Property{}

	p.ID = strings.TrimSpace(cells["id"])

	fechaAlta, ok := coerceDate(cells["fecha_alta"])
	note(ok)
	p.FechaAlta = fechaAlta

	p.Status = strings.TrimSpace(cells["status"])
	p.TipoOperacion = strings.TrimSpace(cells["tipo_operacion"])
	p.TipoContrato = strings.TrimSpace(cells["tipo_contrato"])
	p.EnInternet = coerceBool(cells["en_internet"])
	p.Cocina = coerceBool(cells["cocina"])
	p.Clave = strings.TrimSpace(cells["clave"])
	p.ClaveOficina = strings.TrimSpace(cells["clave_oficina"])
	p.SubtipoPropiedad = strings.TrimSpace(cells["subtipo_propiedad"])
	p.Calle = strings.TrimSpace(cells["calle"])
	p.Colonia = strings.TrimSpace(cells["colonia"])
	p.Municipio = strings.TrimSpace(cells["municipio"])
	p.Descripcion = strings.TrimSpace(cells["descripcion"])
	p.NombreAgente = strings.TrimSpace(cells["nombre_agente"])
	p.ApellidoPaternoAgente = strings.TrimSpace(cells["apellido_paterno_agente"])
	p.ApellidoMaternoAgente = strings.TrimSpace(cells["apellido_materno_agente"])

	// Preserved strings: leading zeros and values like "10-B" must survive.
	p.CodigoPostal = strings.TrimSpace(cells["codigo_postal"])
	p.Numero = strings.TrimSpace(cells["numero"])

	p.Latitud, ok = coerceNullFloat(cells["latitud"])
	note(ok)
	p.Longitud, ok = coerceNullFloat(cells["longitud"])
	note(ok)
	p.Precio, ok = coerceNullFloat(cells["precio"])
	note(ok)
	p.Comision, ok = coerceNullFloat(cells["comision"])
	note(ok)
	p.ComisionCompartirExternas, ok = coerceNullFloat(cells["comision_compartir_externas"])
	note(ok)
	p.M2Construccion, ok = coerceNullFloat(cells["m2_construccion"])
	note(ok)
	p.M2Terreno, ok = coerceNullFloat(cells["m2_terreno"])
	note(ok)

	p.Recamaras, ok = coerceNullInt(cells["recamaras"])
	note(ok)
	p.NivelesConstruidos, ok = coerceNullInt(cells["niveles_construidos"])
	note(ok)
	p.Edad, ok = coerceNullInt(cells["edad"])
	note(ok)
	p.Estacionamientos, ok = coerceNullInt(cells["estacionamientos"])
	note(ok)

	full, ok := sanitizeBathCount(cells[rawFullBaths])
	note(ok)
	half, ok := sanitizeBathCount(cells[rawHalfBaths])
	note(ok)
	p.BanosTotales = full + 0.5*half

	return p, fallbacks
}

// Package schema is the canonical registry for the properties table: the
// ordered output column list, the priority tiers used by completeness
// validation, and the enum vocabularies enforced by the store.
package schema

// Property statuses.
const (
	StatusEnPromocion  = "enPromocion"
	StatusConIntencion = "conIntencion"
	StatusVendidas     = "vendidas"
)

// Contract types.
const (
	ContractTypeExclusiva = "exclusiva"
	ContractTypeOpcion    = "opcion"
	ContractTypeAbierta   = "abierta"
)

// Priority tiers.
const (
	PriorityCritical    = "critical"
	PriorityRecommended = "recommended"
	PriorityOptional    = "optional"
)

// Statuses, OperationTypes and ContractTypes are the accepted enum values for
// their columns, enforced as CHECK constraints in the store.
var (
	Statuses       = []string{StatusEnPromocion, StatusConIntencion, StatusVendidas}
	OperationTypes = []string{"venta", "renta", "traspaso", "opcion"}
	ContractTypes  = []string{ContractTypeExclusiva, ContractTypeOpcion, ContractTypeAbierta}
)

// Columns is the canonical ordered field set of a normalized record. The
// normalizer projects its output onto exactly this list; banos_totales
// replaces the raw full/half bath columns, which never survive cleaning.
var Columns = []string{
	"id", "fecha_alta", "status", "tipo_operacion", "tipo_contrato", "en_internet",
	"clave", "clave_oficina", "subtipo_propiedad", "calle", "numero",
	"colonia", "municipio", "latitud", "longitud", "codigo_postal",
	"precio", "comision", "comision_compartir_externas", "m2_construccion",
	"m2_terreno", "recamaras", "banos_totales", "cocina",
	"niveles_construidos", "edad", "estacionamientos", "descripcion",
	"nombre_agente", "apellido_paterno_agente", "apellido_materno_agente",
}

// Priority classifies every canonical column into one of the three tiers.
// Only critical-tier gaps mark a record incomplete; the other tiers are
// reported for review but never gate the workflow.
var Priority = map[string][]string{
	PriorityCritical: {
		"id", "precio", "m2_construccion", "m2_terreno", "recamaras",
		"banos_totales", "descripcion", "status", "tipo_operacion",
		"tipo_contrato", "colonia", "municipio", "latitud", "longitud",
	},
	PriorityRecommended: {
		"fecha_alta", "calle", "numero", "codigo_postal", "subtipo_propiedad",
		"comision", "edad", "estacionamientos",
	},
	PriorityOptional: {
		"clave", "clave_oficina", "en_internet", "cocina",
		"niveles_construidos", "comision_compartir_externas", "nombre_agente",
		"apellido_paterno_agente", "apellido_materno_agente",
	},
}

// Tiers is the evaluation order of the priority classification.
var Tiers = []string{PriorityCritical, PriorityRecommended, PriorityOptional}

var stringColumns = map[string]bool{
	"id": true, "status": true, "tipo_operacion": true, "tipo_contrato": true,
	"clave": true, "clave_oficina": true, "subtipo_propiedad": true,
	"calle": true, "numero": true, "colonia": true, "municipio": true,
	"codigo_postal": true, "descripcion": true, "nombre_agente": true,
	"apellido_paterno_agente": true, "apellido_materno_agente": true,
}

var floatColumns = map[string]bool{
	"latitud": true, "longitud": true, "precio": true, "comision": true,
	"comision_compartir_externas": true, "m2_construccion": true,
	"m2_terreno": true, "banos_totales": true,
}

var intColumns = map[string]bool{
	"recamaras": true, "niveles_construidos": true, "edad": true,
	"estacionamientos": true,
}

var boolColumns = map[string]bool{
	"en_internet": true, "cocina": true,
}

var canonical = func() map[string]bool {
	m := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		m[c] = true
	}
	return m
}()

// IsCanonical reports whether the column belongs to the registry.
func IsCanonical(column string) bool {
	return canonical[column]
}

// IsStringColumn reports whether a column holds text, which makes the empty
// string count as missing during validation.
func IsStringColumn(column string) bool {
	return stringColumns[column]
}

// IsNumericColumn reports whether a column holds a numeric value, which makes
// the correction workflow coerce proposed textual values before writing.
func IsNumericColumn(column string) bool {
	return floatColumns[column] || intColumns[column]
}

// IsIntColumn reports whether a numeric column is integer-valued.
func IsIntColumn(column string) bool {
	return intColumns[column]
}

// IsBoolColumn reports whether a column holds a boolean flag.
func IsBoolColumn(column string) bool {
	return boolColumns[column]
}

// IsUpdatable reports whether the correction workflow may write the column.
// Identity and bookkeeping columns are immutable through that path.
func IsUpdatable(column string) bool {
	switch column {
	case "id", "fecha_alta":
		return false
	}
	return canonical[column]
}

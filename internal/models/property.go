package models

import "time"

// Property is one real-estate listing as persisted in the properties table.
// Column names keep the partner portal's Spanish vocabulary so that exports,
// reports and audit entries line up with the source data.
type Property struct {
	ID                        string     `json:"id" gorm:"column:id;primaryKey"`
	FechaAlta                 *time.Time `json:"fecha_alta" gorm:"column:fecha_alta"`
	Status                    string     `json:"status" gorm:"column:status"`
	TipoOperacion             string     `json:"tipo_operacion" gorm:"column:tipo_operacion"`
	TipoContrato              string     `json:"tipo_contrato" gorm:"column:tipo_contrato"`
	EnInternet                bool       `json:"en_internet" gorm:"column:en_internet"`
	Clave                     string     `json:"clave" gorm:"column:clave"`
	ClaveOficina              string     `json:"clave_oficina" gorm:"column:clave_oficina"`
	SubtipoPropiedad          string     `json:"subtipo_propiedad" gorm:"column:subtipo_propiedad"`
	Calle                     string     `json:"calle" gorm:"column:calle"`
	Numero                    string     `json:"numero" gorm:"column:numero"`
	Colonia                   string     `json:"colonia" gorm:"column:colonia"`
	Municipio                 string     `json:"municipio" gorm:"column:municipio"`
	Latitud                   *float64   `json:"latitud" gorm:"column:latitud"`
	Longitud                  *float64   `json:"longitud" gorm:"column:longitud"`
	CodigoPostal              string     `json:"codigo_postal" gorm:"column:codigo_postal"`
	Precio                    *float64   `json:"precio" gorm:"column:precio"`
	Comision                  *float64   `json:"comision" gorm:"column:comision"`
	ComisionCompartirExternas *float64   `json:"comision_compartir_externas" gorm:"column:comision_compartir_externas"`
	M2Construccion            *float64   `json:"m2_construccion" gorm:"column:m2_construccion"`
	M2Terreno                 *float64   `json:"m2_terreno" gorm:"column:m2_terreno"`
	Recamaras                 *int       `json:"recamaras" gorm:"column:recamaras"`
	BanosTotales              float64    `json:"banos_totales" gorm:"column:banos_totales"`
	Cocina                    bool       `json:"cocina" gorm:"column:cocina"`
	NivelesConstruidos        *int       `json:"niveles_construidos" gorm:"column:niveles_construidos"`
	Edad                      *int       `json:"edad" gorm:"column:edad"`
	Estacionamientos          *int       `json:"estacionamientos" gorm:"column:estacionamientos"`
	Descripcion               string     `json:"descripcion" gorm:"column:descripcion"`
	NombreAgente              string     `json:"nombre_agente" gorm:"column:nombre_agente"`
	ApellidoPaternoAgente     string     `json:"apellido_paterno_agente" gorm:"column:apellido_paterno_agente"`
	ApellidoMaternoAgente     string     `json:"apellido_materno_agente" gorm:"column:apellido_materno_agente"`
	CreatedAt                 time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt                 time.Time  `json:"updated_at" gorm:"column:updated_at"`
	HasCriticalGaps           bool       `json:"has_critical_gaps" gorm:"column:has_critical_gaps"`
}

func (Property) TableName() string {
	return "properties"
}

// FieldValue returns the value stored under a canonical column name. The
// second return is false for unknown columns. Nullable columns come back as
// nil interface values when unset.
func (p *Property) FieldValue(column string) (interface{}, bool) {
	switch column {
	case "id":
		return p.ID, true
	case "fecha_alta":
		if p.FechaAlta == nil {
			return nil, true
		}
		return *p.FechaAlta, true
	case "status":
		return p.Status, true
	case "tipo_operacion":
		return p.TipoOperacion, true
	case "tipo_contrato":
		return p.TipoContrato, true
	case "en_internet":
		return p.EnInternet, true
	case "clave":
		return p.Clave, true
	case "clave_oficina":
		return p.ClaveOficina, true
	case "subtipo_propiedad":
		return p.SubtipoPropiedad, true
	case "calle":
		return p.Calle, true
	case "numero":
		return p.Numero, true
	case "colonia":
		return p.Colonia, true
	case "municipio":
		return p.Municipio, true
	case "latitud":
		return floatOrNil(p.Latitud), true
	case "longitud":
		return floatOrNil(p.Longitud), true
	case "codigo_postal":
		return p.CodigoPostal, true
	case "precio":
		return floatOrNil(p.Precio), true
	case "comision":
		return floatOrNil(p.Comision), true
	case "comision_compartir_externas":
		return floatOrNil(p.ComisionCompartirExternas), true
	case "m2_construccion":
		return floatOrNil(p.M2Construccion), true
	case "m2_terreno":
		return floatOrNil(p.M2Terreno), true
	case "recamaras":
		return intOrNil(p.Recamaras), true
	case "banos_totales":
		return p.BanosTotales, true
	case "cocina":
		return p.Cocina, true
	case "niveles_construidos":
		return intOrNil(p.NivelesConstruidos), true
	case "edad":
		return intOrNil(p.Edad), true
	case "estacionamientos":
		return intOrNil(p.Estacionamientos), true
	case "descripcion":
		return p.Descripcion, true
	case "nombre_agente":
		return p.NombreAgente, true
	case "apellido_paterno_agente":
		return p.ApellidoPaternoAgente, true
	case "apellido_materno_agente":
		return p.ApellidoMaternoAgente, true
	}
	return nil, false
}

// DaysOnMarket returns the number of days since the listing date, or nil when
// the listing date is unknown. Shown on the review dashboard.
func (p *Property) DaysOnMarket(now time.Time) *int {
	if p.FechaAlta == nil {
		return nil
	}
	days := int(now.Sub(*p.FechaAlta).Hours() / 24)
	return &days
}

func floatOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intOrNil(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

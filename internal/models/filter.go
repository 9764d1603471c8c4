package models

// PropertyFilter is the open-ended set of optional dashboard filters. Nil or
// empty members impose no constraint; set members are ANDed together.
type PropertyFilter struct {
	MinPrice            *float64 `form:"min_price" json:"min_price"`
	MaxPrice            *float64 `form:"max_price" json:"max_price"`
	OperationTypes      []string `form:"operation_type" json:"operation_types"`
	PropertyTypes       []string `form:"property_type" json:"property_types"`
	Statuses            []string `form:"status" json:"statuses"`
	ContractTypes       []string `form:"contract_type" json:"contract_types"`
	MinBedrooms         *int     `form:"min_bedrooms" json:"min_bedrooms"`
	MinBathrooms        *float64 `form:"min_bathrooms" json:"min_bathrooms"`
	MaxAgeYears         *int     `form:"max_age_years" json:"max_age_years"`
	MinConstructionM2   *float64 `form:"min_construction_m2" json:"min_construction_m2"`
	MinLandM2           *float64 `form:"min_land_m2" json:"min_land_m2"`
	HasParking          *bool    `form:"has_parking" json:"has_parking"`
	MinCommission       *float64 `form:"min_commission" json:"min_commission"`
	DescriptionKeywords []string `form:"keywords" json:"description_keywords"`
	CriticalGapsOnly    bool     `form:"critical_gaps_only" json:"critical_gaps_only"`
}

// FixRequest asks the correction workflow to write one field of one property.
type FixRequest struct {
	PropertyID string `json:"property_id"`
	FieldName  string `json:"field_name"`
	OldValue   string `json:"old_value"`
	NewValue   string `json:"new_value"`
	ChangedBy  string `json:"changed_by"`
	Source     string `json:"source"`
}

// FixResult reports the outcome of one field's apply. Fields in the same
// batch succeed or fail independently.
type FixResult struct {
	PropertyID string `json:"property_id"`
	FieldName  string `json:"field_name"`
	Applied    bool   `json:"applied"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

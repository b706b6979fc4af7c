package finanzas

// Flow types carried by dim_categorias.tipo_flujo. The values are data, not
// display strings: they appear verbatim in the CSV files.
const (
	FlowIncome    = "Ingreso"
	FlowExpense   = "Gasto"
	FlowFinancial = "Operación financiera"
	FlowInternal  = "Mov. interno"
	FlowEquity    = "Patrimonio"
	FlowAdjust    = "Ajuste"
)

// FlowTypes lists the accepted tipo_flujo values in display order.
var FlowTypes = []string{FlowIncome, FlowExpense, FlowFinancial, FlowInternal, FlowEquity, FlowAdjust}

// Field describes a single column of a table.
type Field struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	// DimTable is set when the field is a foreign key into a dimension table.
	DimTable string `json:"dim_table,omitempty"`
}

// Schema is the explicit per-table declaration: ordered fields, the identifier
// column, the CSV file the table lives in, and the ID prefix for dimensions.
// Movements carry no prefix; their IDs are date-scoped (YYYYMMDD-NNN).
type Schema struct {
	Table     string  `json:"table"`
	File      string  `json:"file"`
	IDField   string  `json:"id_field"`
	NameField string  `json:"name_field,omitempty"`
	IDPrefix  string  `json:"id_prefix,omitempty"`
	Fields    []Field `json:"fields"`
}

const (
	TableMovements       = "movimientos"
	TableAccounts        = "cuentas"
	TableCategories      = "categorias"
	TableCounterparties  = "contrapartes"
	TableInstruments     = "instrumentos"
)

// Schemas declares every table. Column names match the CSV headers exactly,
// including "activa (si/no)".
var Schemas = map[string]Schema{
	TableMovements: {
		Table:   TableMovements,
		File:    "fact_movimientos.csv",
		IDField: "mov_id",
		Fields: []Field{
			{Name: "mov_id"},
			{Name: "fecha", Required: true},
			{Name: "mes"},
			{Name: "anio"},
			{Name: "cuenta_id", DimTable: TableAccounts},
			{Name: "contraparte_id", DimTable: TableCounterparties},
			{Name: "categoria_id", DimTable: TableCategories},
			{Name: "instrumento_id", DimTable: TableInstruments},
			{Name: "descripcion", Required: true},
			{Name: "monto", Required: true},
			{Name: "moneda", Required: true},
			{Name: "tasa_cambio"},
		},
	},
	TableAccounts: {
		Table:     TableAccounts,
		File:      "dim_cuentas.csv",
		IDField:   "cuenta_id",
		NameField: "cuenta_nombre",
		IDPrefix:  "CTA_",
		Fields: []Field{
			{Name: "cuenta_id"},
			{Name: "cuenta_nombre", Required: true},
			{Name: "tipo_cuenta", Required: true},
			{Name: "banco", Required: true},
			{Name: "moneda_base", Required: true},
			{Name: "activa (si/no)", Required: true},
		},
	},
	TableCategories: {
		Table:     TableCategories,
		File:      "dim_categorias.csv",
		IDField:   "categoria_id",
		NameField: "categoria_nombre",
		IDPrefix:  "CAT_",
		Fields: []Field{
			{Name: "categoria_id"},
			{Name: "tipo_flujo", Required: true},
			{Name: "categoria_nombre", Required: true},
		},
	},
	TableCounterparties: {
		Table:     TableCounterparties,
		File:      "dim_contrapartes.csv",
		IDField:   "contraparte_id",
		NameField: "contraparte_nombre",
		IDPrefix:  "CTR_",
		Fields: []Field{
			{Name: "contraparte_id"},
			{Name: "contraparte_nombre", Required: true},
			{Name: "tipo", Required: true},
			{Name: "subtipo", Required: true},
			{Name: "activa (si/no)", Required: true},
		},
	},
	TableInstruments: {
		Table:     TableInstruments,
		File:      "dim_instrumentos.csv",
		IDField:   "instrumento_id",
		NameField: "instrumento_nombre",
		IDPrefix:  "INS_",
		Fields: []Field{
			{Name: "instrumento_id"},
			{Name: "instrumento_nombre", Required: true},
			{Name: "tipo", Required: true},
			{Name: "emisor", Required: true},
			{Name: "moneda", Required: true},
		},
	},
}

// DimensionTables lists the dimension tables in display order.
var DimensionTables = []string{TableAccounts, TableCategories, TableCounterparties, TableInstruments}

// dimFieldToTable maps a movement foreign-key field to the dimension table it
// references.
var dimFieldToTable = map[string]string{
	"cuenta_id":      TableAccounts,
	"contraparte_id": TableCounterparties,
	"categoria_id":   TableCategories,
	"instrumento_id": TableInstruments,
}

// MovementDimFields are the mutually exclusive movement references: exactly one
// must be set on a valid movement. categoria_id is not part of the set.
var MovementDimFields = []string{"cuenta_id", "contraparte_id", "instrumento_id"}

// IsTable reports whether name is a known table.
func IsTable(name string) bool {
	_, ok := Schemas[name]
	return ok
}

// IsDimension reports whether name is a dimension table.
func IsDimension(name string) bool {
	return IsTable(name) && name != TableMovements
}

// FieldNames returns the ordered column names of a schema.
func (s Schema) FieldNames() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// HasField reports whether the schema declares the named column.
func (s Schema) HasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// RequiredFields returns the names of the required columns, in order.
func (s Schema) RequiredFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

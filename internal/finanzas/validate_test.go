package finanzas

import (
	"strings"
	"testing"
)

func TestValidateMovementRequiredFields(t *testing.T) {
	rec := mov("", "2025-03-10", "1500", "CAT_010", "cuenta_id", "CTA_001")
	if v := ValidateRecord(Schemas[TableMovements], rec); !v.OK {
		t.Fatalf("expected valid movement, got: %s", v.Message)
	}

	for _, field := range []string{"fecha", "descripcion", "monto", "moneda"} {
		broken := rec.Clone()
		broken[field] = "   "
		v := ValidateRecord(Schemas[TableMovements], broken)
		if v.OK {
			t.Errorf("expected missing %s to fail", field)
		}
		if !strings.Contains(v.Message, field) {
			t.Errorf("message should name %s, got: %s", field, v.Message)
		}
	}
}

func TestValidateMovementDimensionExclusivity(t *testing.T) {
	base := mov("", "2025-03-10", "1500", "CAT_010", "", "")

	none := base.Clone()
	if v := ValidateRecord(Schemas[TableMovements], none); v.OK {
		t.Fatal("expected zero dimension references to fail")
	}

	one := base.Clone()
	one["contraparte_id"] = "CTR_002"
	if v := ValidateRecord(Schemas[TableMovements], one); !v.OK {
		t.Fatalf("expected one reference to pass, got: %s", v.Message)
	}

	two := one.Clone()
	two["instrumento_id"] = "INS_001"
	if v := ValidateRecord(Schemas[TableMovements], two); v.OK {
		t.Fatal("expected two dimension references to fail")
	}

	three := two.Clone()
	three["cuenta_id"] = "CTA_001"
	if v := ValidateRecord(Schemas[TableMovements], three); v.OK {
		t.Fatal("expected three dimension references to fail")
	}

	// categoria_id is not part of the exclusive set.
	noCat := one.Clone()
	delete(noCat, "categoria_id")
	if v := ValidateRecord(Schemas[TableMovements], noCat); !v.OK {
		t.Fatalf("categoria_id must not count toward exclusivity: %s", v.Message)
	}
}

func TestValidateDimensionRequiredFields(t *testing.T) {
	account := cta("CTA_001", "Cuenta Corriente")
	if v := ValidateRecord(Schemas[TableAccounts], account); !v.OK {
		t.Fatalf("expected valid account, got: %s", v.Message)
	}

	broken := account.Clone()
	broken["banco"] = ""
	v := ValidateRecord(Schemas[TableAccounts], broken)
	if v.OK {
		t.Fatal("expected missing banco to fail")
	}
	if !strings.Contains(v.Message, "banco") {
		t.Fatalf("message should name banco, got: %s", v.Message)
	}

	// Validation does not check that references exist.
	dangling := mov("", "2025-03-10", "100", "CAT_999", "cuenta_id", "CTA_999")
	if v := ValidateRecord(Schemas[TableMovements], dangling); !v.OK {
		t.Fatalf("dangling references must pass validation: %s", v.Message)
	}
}

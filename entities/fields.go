package entities

import "fmt"

// Field binds one optional medication attribute to its column/form/JSON name.
// Ref returns a pointer to the struct field: *string for GenericName,
// **string, **int64 or **float64 for the optional ones.
type Field struct {
	Name    string
	Label   string
	Section string
	Ref     func(m *Medication) any
}

// Detail-view sections, in display order.
const (
	SectionIdentity   = "البيانات الأساسية"
	SectionCommercial = "البيانات التجارية"
	SectionLimits     = "حدود العمر والوزن"
	SectionDosing     = "الجرعات"
	SectionSafety     = "المعلومات الطبية والسلامة"
	SectionPregnancy  = "الحمل والرضاعة"
	SectionStorage    = "التخزين"
	SectionSource     = "المصدر"
	SectionMedia      = "الوسائط"
	SectionNotes      = "ملاحظات"
)

// Sections lists the detail-view sections in display order.
var Sections = []string{
	SectionIdentity,
	SectionCommercial,
	SectionLimits,
	SectionDosing,
	SectionSafety,
	SectionPregnancy,
	SectionStorage,
	SectionSource,
	SectionMedia,
	SectionNotes,
}

// MedicationFields lists every writable medication attribute in schema order.
// The id and timestamps are not included.
var MedicationFields = []Field{
	{"generic_name", "الاسم العلمي", SectionIdentity, func(m *Medication) any { return &m.GenericName }},
	{"trade_name", "الاسم التجاري", SectionIdentity, func(m *Medication) any { return &m.TradeName }},
	{"category_id", "معرف الفئة", "", func(m *Medication) any { return &m.CategoryID }},
	{"category_name", "الفئة", "", func(m *Medication) any { return &m.CategoryName }},
	{"drug_type_id", "معرف النوع", "", func(m *Medication) any { return &m.DrugTypeID }},
	{"drug_type_name", "النوع الدوائي", "", func(m *Medication) any { return &m.DrugTypeName }},
	{"manufacturer_id", "معرف الشركة", "", func(m *Medication) any { return &m.ManufacturerID }},
	{"manufacturer_name", "الشركة المصنعة", "", func(m *Medication) any { return &m.ManufacturerName }},
	{"concentration", "التركيز", SectionIdentity, func(m *Medication) any { return &m.Concentration }},
	{"form", "الشكل الصيدلاني", SectionIdentity, func(m *Medication) any { return &m.Form }},
	{"route", "طريقة الإعطاء", SectionIdentity, func(m *Medication) any { return &m.Route }},
	{"barcode", "الباركود", SectionIdentity, func(m *Medication) any { return &m.Barcode }},
	{"price", "السعر", SectionCommercial, func(m *Medication) any { return &m.Price }},
	{"price_with_tax", "السعر مع الضريبة", SectionCommercial, func(m *Medication) any { return &m.PriceWithTax }},
	{"availability", "التوفر", SectionCommercial, func(m *Medication) any { return &m.Availability }},
	{"package_info", "معلومات العبوة", SectionCommercial, func(m *Medication) any { return &m.PackageInfo }},
	{"manufacturing_country", "بلد التصنيع", SectionCommercial, func(m *Medication) any { return &m.ManufacturingCountry }},
	{"warehouse_name", "المستودع", SectionCommercial, func(m *Medication) any { return &m.WarehouseName }},
	{"supplier_name", "المورد", SectionCommercial, func(m *Medication) any { return &m.SupplierName }},
	{"min_age_months", "أقل عمر (شهر)", SectionLimits, func(m *Medication) any { return &m.MinAgeMonths }},
	{"max_age_months", "أقصى عمر (شهر)", SectionLimits, func(m *Medication) any { return &m.MaxAgeMonths }},
	{"min_weight_kg", "أقل وزن (كغ)", SectionLimits, func(m *Medication) any { return &m.MinWeightKg }},
	{"max_weight_kg", "أقصى وزن (كغ)", SectionLimits, func(m *Medication) any { return &m.MaxWeightKg }},
	{"age_limit_text", "حدود العمر", SectionLimits, func(m *Medication) any { return &m.AgeLimitText }},
	{"weight_limit_text", "حدود الوزن", SectionLimits, func(m *Medication) any { return &m.WeightLimitText }},
	{"dose_per_kg", "الجرعة لكل كغ", SectionDosing, func(m *Medication) any { return &m.DosePerKg }},
	{"dose_calculation", "طريقة حساب الجرعة", SectionDosing, func(m *Medication) any { return &m.DoseCalculation }},
	{"max_single_dose", "الجرعة القصوى المفردة", SectionDosing, func(m *Medication) any { return &m.MaxSingleDose }},
	{"max_daily_dose", "الجرعة اليومية القصوى", SectionDosing, func(m *Medication) any { return &m.MaxDailyDose }},
	{"frequency", "عدد المرات", SectionDosing, func(m *Medication) any { return &m.Frequency }},
	{"treatment_duration", "مدة العلاج", SectionDosing, func(m *Medication) any { return &m.TreatmentDuration }},
	{"indications", "دواعي الاستعمال", SectionSafety, func(m *Medication) any { return &m.Indications }},
	{"contraindications", "موانع الاستعمال", SectionSafety, func(m *Medication) any { return &m.Contraindications }},
	{"side_effects", "الآثار الجانبية", SectionSafety, func(m *Medication) any { return &m.SideEffects }},
	{"drug_interactions", "التداخلات الدوائية", SectionSafety, func(m *Medication) any { return &m.DrugInteractions }},
	{"warnings", "التحذيرات", SectionSafety, func(m *Medication) any { return &m.Warnings }},
	{"overdose_info", "الجرعة الزائدة", SectionSafety, func(m *Medication) any { return &m.OverdoseInfo }},
	{"pregnancy_category", "فئة الحمل", SectionPregnancy, func(m *Medication) any { return &m.PregnancyCategory }},
	{"pregnancy_safety", "الأمان أثناء الحمل", SectionPregnancy, func(m *Medication) any { return &m.PregnancySafety }},
	{"lactation_safety", "الأمان أثناء الرضاعة", SectionPregnancy, func(m *Medication) any { return &m.LactationSafety }},
	{"storage_conditions", "شروط التخزين", SectionStorage, func(m *Medication) any { return &m.StorageConditions }},
	{"shelf_life", "مدة الصلاحية", SectionStorage, func(m *Medication) any { return &m.ShelfLife }},
	{"source", "المصدر", SectionSource, func(m *Medication) any { return &m.Source }},
	{"source_reference", "المرجع", SectionSource, func(m *Medication) any { return &m.SourceReference }},
	{"last_verified", "آخر تحقق", SectionSource, func(m *Medication) any { return &m.LastVerified }},
	{"image_path", "مسار الصورة", SectionMedia, func(m *Medication) any { return &m.ImagePath }},
	{"leaflet_path", "مسار النشرة", SectionMedia, func(m *Medication) any { return &m.LeafletPath }},
	{"notes", "ملاحظات", SectionNotes, func(m *Medication) any { return &m.Notes }},
}

// FieldValue dereferences a Field.Ref result into a plain value, nil when
// the attribute is absent.
func FieldValue(ref any) any {
	switch p := ref.(type) {
	case *string:
		return *p
	case **string:
		if *p == nil {
			return nil
		}
		return **p
	case **int64:
		if *p == nil {
			return nil
		}
		return **p
	case **float64:
		if *p == nil {
			return nil
		}
		return **p
	}
	panic(fmt.Sprintf("entities: unsupported medication field type %T", ref))
}

// LookupField returns the field with the given name.
func LookupField(name string) (Field, bool) {
	for _, f := range MedicationFields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

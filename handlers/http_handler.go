// Package handlers provides HTTP request handlers for the medication catalog.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/filters"
	"github.com/giygas/medication-catalog/importer"
	"github.com/giygas/medication-catalog/interfaces"
	"github.com/giygas/medication-catalog/logging"
	"github.com/giygas/medication-catalog/metrics"
	"github.com/giygas/medication-catalog/resolver"
	"github.com/giygas/medication-catalog/session"
	"github.com/giygas/medication-catalog/stats"
)

// Confirmation actions
const (
	actionDeleteMedication = "delete_medication"
	actionDeleteAll        = "delete_all"
)

const (
	chartWidth  = 640
	chartHeight = 320
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	store     interfaces.CatalogStore
	validator interfaces.DataValidator
	resolver  *resolver.Resolver
	health    interfaces.HealthChecker
	importer  *importer.Importer
	maxUpload int64
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(store interfaces.CatalogStore, validator interfaces.DataValidator, health interfaces.HealthChecker, imp *importer.Importer, maxUpload int64) interfaces.HTTPHandler {
	if imp == nil {
		imp = importer.New(0)
	}
	return &HTTPHandlerImpl{
		store:     store,
		validator: validator,
		resolver:  resolver.New(store),
		health:    health,
		importer:  imp,
		maxUpload: maxUpload,
	}
}

// parseID reads and validates the {id} URL parameter.
func (h *HTTPHandlerImpl) parseID(r *http.Request) (int64, error) {
	id, err := h.validator.ValidateID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", entities.ErrInvalidArgument, err)
	}
	return id, nil
}

func flash(r *http.Request, level, message string) {
	session.FromContext(r.Context()).AddFlash(level, message)
}

// ---------------------------------------------------------------------------
// Dashboard
// ---------------------------------------------------------------------------

type tableCount struct {
	Kind  entities.Kind
	Label string
	Count int
}

type referenceTab struct {
	Key    string
	Label  string
	Active bool
}

type referenceRow struct {
	ID     int64
	Name   string
	NameAr string
	Extra  string
}

type homeView struct {
	Counts      []tableCount
	Tabs        []referenceTab
	ExtraHeader string
	Rows        []referenceRow
}

var homeTabs = []entities.Kind{entities.KindCategory, entities.KindDrugType, entities.KindManufacturer}

// Home renders entity counts and the reference tables as tabs
func (h *HTTPHandlerImpl) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view := homeView{}
	for _, kind := range entities.AllKinds {
		n, err := h.store.Count(ctx, kind)
		if err != nil {
			renderError(w, r, "home", err)
			return
		}
		view.Counts = append(view.Counts, tableCount{Kind: kind, Label: kindLabel(kind), Count: n})
	}

	active := entities.KindCategory
	if k, err := entities.ParseKind(r.URL.Query().Get("tab")); err == nil {
		for _, t := range homeTabs {
			if t == k {
				active = k
			}
		}
	}
	for _, k := range homeTabs {
		view.Tabs = append(view.Tabs, referenceTab{Key: string(k), Label: kindLabel(k), Active: k == active})
	}

	rows, extra, err := h.referenceRows(ctx, active)
	if err != nil {
		renderError(w, r, "home", err)
		return
	}
	view.Rows = rows
	view.ExtraHeader = extra

	render(w, r, http.StatusOK, "home", "لوحة المعلومات", view)
}

// referenceRows lists a classification table for display. Absent optional
// columns render as "-".
func (h *HTTPHandlerImpl) referenceRows(ctx context.Context, kind entities.Kind) ([]referenceRow, string, error) {
	var rows []referenceRow
	switch kind {
	case entities.KindCategory:
		list, err := h.store.ListCategories(ctx)
		if err != nil {
			return nil, "", err
		}
		for _, c := range list {
			rows = append(rows, referenceRow{ID: c.ID, Name: c.Name, NameAr: orDash(c.NameAr), Extra: orDash(c.Description)})
		}
		return rows, "الوصف", nil
	case entities.KindDrugType:
		list, err := h.store.ListDrugTypes(ctx)
		if err != nil {
			return nil, "", err
		}
		for _, d := range list {
			rows = append(rows, referenceRow{ID: d.ID, Name: d.Name, NameAr: orDash(d.NameAr), Extra: orDash(d.Description)})
		}
		return rows, "الوصف", nil
	case entities.KindManufacturer:
		list, err := h.store.ListManufacturers(ctx)
		if err != nil {
			return nil, "", err
		}
		for _, m := range list {
			rows = append(rows, referenceRow{ID: m.ID, Name: m.Name, NameAr: orDash(m.NameAr), Extra: orDash(m.Country)})
		}
		return rows, "البلد", nil
	}
	return nil, "", fmt.Errorf("%w: %s is not a reference table", entities.ErrInvalidArgument, kind)
}

// ---------------------------------------------------------------------------
// Medications
// ---------------------------------------------------------------------------

type detailItem struct {
	Label string
	Value string
}

type detailSection struct {
	Title string
	Items []detailItem
}

type medicationDetail struct {
	Medication  *entities.Medication
	Labels      resolver.Labels
	Sections    []detailSection
	DeleteArmed bool
}

type medicationsView struct {
	Criteria            filters.Criteria
	CategoryOptions     []string
	AvailabilityOptions []string
	Rows                []filters.Row
	Count               int
	Selected            *medicationDetail
}

// criteriaFromQuery reads the browser filters. Missing selects mean "all".
func criteriaFromQuery(q url.Values) filters.Criteria {
	c := filters.Criteria{
		Search:       q.Get("q"),
		Category:     q.Get("category"),
		Availability: q.Get("availability"),
	}
	if filters.IsAll(c.Category) {
		c.Category = filters.AllLabel
	}
	if filters.IsAll(c.Availability) {
		c.Availability = filters.AllLabel
	}
	return c
}

// filterMedications validates the search term and applies the filters.
func (h *HTTPHandlerImpl) filterMedications(ctx context.Context, c filters.Criteria) ([]filters.Row, error) {
	if err := h.validator.ValidateSearch(c.Search); err != nil {
		return nil, &entities.ValidationError{Field: "q", Message: err.Error()}
	}

	meds, err := h.store.ListMedications(ctx)
	if err != nil {
		return nil, err
	}
	return filters.Apply(ctx, meds, c, h.resolver)
}

// ListMedications renders the filterable medication browser
func (h *HTTPHandlerImpl) ListMedications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	c := criteriaFromQuery(q)

	rows, err := h.filterMedications(ctx, c)
	if entities.IsValidation(err) {
		logging.Warn("Unusual user input", "q", c.Search, "error", err)
		flash(r, session.FlashWarning, "عبارة البحث غير صالحة، تم تجاهلها")
		c.Search = ""
		rows, err = h.filterMedications(ctx, c)
	}
	if err != nil {
		renderError(w, r, "list medications", err)
		return
	}

	categories, err := h.store.ListCategories(ctx)
	if err != nil {
		renderError(w, r, "list medications", err)
		return
	}

	view := medicationsView{
		Criteria:            c,
		CategoryOptions:     []string{filters.AllLabel},
		AvailabilityOptions: append([]string{filters.AllLabel}, entities.AvailabilityOptions...),
		Rows:                rows,
		Count:               len(rows),
	}
	for _, cat := range categories {
		view.CategoryOptions = append(view.CategoryOptions, cat.Reference().Label())
	}

	if sel := q.Get("selected"); sel != "" {
		id, err := h.validator.ValidateID(sel)
		if err != nil {
			flash(r, session.FlashWarning, "معرف الدواء غير صالح")
		} else {
			detail, err := h.medicationDetail(ctx, r, id)
			switch {
			case errors.Is(err, entities.ErrNotFound):
				flash(r, session.FlashWarning, "الدواء المحدد غير موجود")
			case err != nil:
				renderError(w, r, "list medications", err)
				return
			default:
				view.Selected = detail
			}
		}
	}

	render(w, r, http.StatusOK, "medications", "الأدوية", view)
}

// medicationDetail loads one medication and lays it out in sections.
func (h *HTTPHandlerImpl) medicationDetail(ctx context.Context, r *http.Request, id int64) (*medicationDetail, error) {
	m, err := h.store.GetMedication(ctx, id)
	if err != nil {
		return nil, err
	}
	labels, err := h.resolver.ResolveAll(ctx, m)
	if err != nil {
		return nil, err
	}

	return &medicationDetail{
		Medication:  m,
		Labels:      labels,
		Sections:    detailSections(m, labels),
		DeleteArmed: session.FromContext(r.Context()).IsArmed(actionDeleteMedication, strconv.FormatInt(id, 10)),
	}, nil
}

// detailSections groups every descriptive field by section. Absent values
// render as the unspecified marker.
func detailSections(m *entities.Medication, labels resolver.Labels) []detailSection {
	sections := make([]detailSection, 0, len(entities.Sections)+1)
	for _, title := range entities.Sections {
		s := detailSection{Title: title}
		for _, f := range entities.MedicationFields {
			if f.Section != title {
				continue
			}
			s.Items = append(s.Items, detailItem{Label: f.Label, Value: displayValue(entities.FieldValue(f.Ref(m)))})
		}
		if title == entities.SectionIdentity {
			s.Items = append(s.Items,
				detailItem{Label: "الفئة", Value: labels.Category},
				detailItem{Label: "النوع الدوائي", Value: labels.DrugType},
				detailItem{Label: "الشركة المصنعة", Value: labels.Manufacturer},
			)
		}
		sections = append(sections, s)
	}

	sections = append(sections, detailSection{
		Title: "التواريخ",
		Items: []detailItem{
			{Label: "تاريخ الإضافة", Value: displayValue(m.CreatedAt)},
			{Label: "آخر تحديث", Value: displayValue(m.UpdatedAt)},
		},
	})
	return sections
}

// ShowMedication renders the sectioned detail view of one medication
func (h *HTTPHandlerImpl) ShowMedication(w http.ResponseWriter, r *http.Request) {
	id, err := h.parseID(r)
	if err != nil {
		renderError(w, r, "show medication", err)
		return
	}

	detail, err := h.medicationDetail(r.Context(), r, id)
	if err != nil {
		renderError(w, r, "show medication", err)
		return
	}

	render(w, r, http.StatusOK, "medication", detail.Medication.GenericName, detail)
}

type formOption struct {
	Value    string
	Label    string
	Selected bool
}

type formField struct {
	Name     string
	Label    string
	Input    string // text, number, textarea or select
	Required bool
	Value    string
	Options  []formOption
}

type formSection struct {
	Title  string
	Fields []formField
}

type medicationFormView struct {
	Sections    []formSection
	Unspecified string
}

// longTextFields are edited in a textarea.
var longTextFields = map[string]bool{
	"dose_calculation":  true,
	"indications":       true,
	"contraindications": true,
	"side_effects":      true,
	"drug_interactions": true,
	"warnings":          true,
	"overdose_info":     true,
	"notes":             true,
}

func options(values []string, selected string) []formOption {
	out := make([]formOption, 0, len(values))
	for _, v := range values {
		out = append(out, formOption{Value: v, Label: v, Selected: v == selected})
	}
	return out
}

func referenceOptions(refs []entities.Reference, selected string) []formOption {
	out := make([]formOption, 0, len(refs))
	for _, ref := range refs {
		id := strconv.FormatInt(ref.ID, 10)
		out = append(out, formOption{Value: id, Label: ref.Label(), Selected: id == selected})
	}
	return out
}

// medicationForm builds the creation form, keeping previously submitted
// values so a rejected post can be corrected.
func (h *HTTPHandlerImpl) medicationForm(ctx context.Context, values url.Values) (*medicationFormView, error) {
	cats, err := h.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	types, err := h.store.ListDrugTypes(ctx)
	if err != nil {
		return nil, err
	}
	mans, err := h.store.ListManufacturers(ctx)
	if err != nil {
		return nil, err
	}

	relations := map[string][]entities.Reference{}
	for _, c := range cats {
		relations["category_id"] = append(relations["category_id"], c.Reference())
	}
	for _, d := range types {
		relations["drug_type_id"] = append(relations["drug_type_id"], d.Reference())
	}
	for _, m := range mans {
		relations["manufacturer_id"] = append(relations["manufacturer_id"], m.Reference())
	}

	view := &medicationFormView{Unspecified: resolver.Unspecified}
	for _, title := range entities.Sections {
		s := formSection{Title: title}
		for _, f := range entities.MedicationFields {
			if f.Section != title {
				continue
			}
			field := formField{Name: f.Name, Label: f.Label, Input: "text", Value: values.Get(f.Name)}
			switch {
			case f.Name == "generic_name":
				field.Required = true
			case f.Name == "form":
				field.Input = "select"
				field.Options = options(entities.Forms, field.Value)
			case f.Name == "availability":
				field.Input = "select"
				field.Options = options(entities.AvailabilityOptions, field.Value)
			case longTextFields[f.Name]:
				field.Input = "textarea"
			default:
				switch f.Ref(&entities.Medication{}).(type) {
				case **int64, **float64:
					field.Input = "number"
				}
			}
			s.Fields = append(s.Fields, field)
		}

		if title == entities.SectionIdentity {
			for _, rel := range []struct{ name, label string }{
				{"category_id", "الفئة"},
				{"drug_type_id", "النوع الدوائي"},
				{"manufacturer_id", "الشركة المصنعة"},
			} {
				s.Fields = append(s.Fields, formField{
					Name:    rel.name,
					Label:   rel.label,
					Input:   "select",
					Options: referenceOptions(relations[rel.name], values.Get(rel.name)),
				})
			}
		}
		view.Sections = append(view.Sections, s)
	}
	return view, nil
}

// NewMedication renders the empty creation form
func (h *HTTPHandlerImpl) NewMedication(w http.ResponseWriter, r *http.Request) {
	view, err := h.medicationForm(r.Context(), url.Values{})
	if err != nil {
		renderError(w, r, "new medication", err)
		return
	}
	render(w, r, http.StatusOK, "medication_form", "إضافة دواء", view)
}

// CreateMedication stores a submitted medication. Blank or zero fields are
// stored as absent.
func (h *HTTPHandlerImpl) CreateMedication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		renderError(w, r, "create medication", fmt.Errorf("%w: %v", entities.ErrInvalidArgument, err))
		return
	}

	m, err := h.validator.MedicationFromForm(r.PostForm)
	if err == nil {
		var id int64
		id, err = h.store.CreateMedication(ctx, m)
		if err == nil {
			logging.Info("Medication created", "id", id, "generic_name", m.GenericName)
			flash(r, session.FlashSuccess, "تمت إضافة الدواء بنجاح")
			redirect(w, r, fmt.Sprintf("/medications/%d", id))
			return
		}
	}

	if !entities.IsValidation(err) {
		renderError(w, r, "create medication", err)
		return
	}

	logging.Warn("Medication rejected", "error", err)
	flash(r, session.FlashError, userMessage(err))
	view, ferr := h.medicationForm(ctx, r.PostForm)
	if ferr != nil {
		renderError(w, r, "create medication", ferr)
		return
	}
	render(w, r, http.StatusUnprocessableEntity, "medication_form", "إضافة دواء", view)
}

// DeleteMedication deletes one medication on the second click. The first
// click only arms the confirmation.
func (h *HTTPHandlerImpl) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	id, err := h.parseID(r)
	if err != nil {
		renderError(w, r, "delete medication", err)
		return
	}
	target := strconv.FormatInt(id, 10)

	sess := session.FromContext(r.Context())
	if !sess.Confirm(actionDeleteMedication, target) {
		metrics.RecordConfirmation(actionDeleteMedication, false)
		sess.AddFlash(session.FlashWarning, "اضغط على زر الحذف مرة أخرى لتأكيد حذف الدواء")
		redirect(w, r, "/medications?selected="+target)
		return
	}
	metrics.RecordConfirmation(actionDeleteMedication, true)

	if err := h.store.Delete(r.Context(), entities.KindMedication, id); err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			sess.AddFlash(session.FlashError, "الدواء غير موجود")
			redirect(w, r, "/medications")
			return
		}
		renderError(w, r, "delete medication", err)
		return
	}

	logging.Info("Medication deleted", "id", id)
	sess.AddFlash(session.FlashSuccess, "تم حذف الدواء")
	redirect(w, r, "/medications")
}

// ---------------------------------------------------------------------------
// Reference tables
// ---------------------------------------------------------------------------

type referencesView struct {
	Kind        entities.Kind
	Path        string
	ExtraHeader string
	ExtraField  string
	Rows        []referenceRow
}

// ListReferences renders a classification table with its creation form
func (h *HTTPHandlerImpl) ListReferences(kind entities.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, extra, err := h.referenceRows(r.Context(), kind)
		if err != nil {
			renderError(w, r, "list "+string(kind), err)
			return
		}

		extraField := "description"
		if kind == entities.KindManufacturer {
			extraField = "country"
		}

		render(w, r, http.StatusOK, "references", kindLabel(kind), referencesView{
			Kind:        kind,
			Path:        kindPath(kind),
			ExtraHeader: extra,
			ExtraField:  extraField,
			Rows:        rows,
		})
	}
}

// CreateReference adds a classification row and redirects back to its table
func (h *HTTPHandlerImpl) CreateReference(kind entities.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			renderError(w, r, "create "+string(kind), fmt.Errorf("%w: %v", entities.ErrInvalidArgument, err))
			return
		}

		name := r.PostForm.Get("name")
		nameAr := entities.Ptr(r.PostForm.Get("name_ar"))

		var err error
		switch kind {
		case entities.KindCategory:
			_, err = h.store.CreateCategory(r.Context(), &entities.Category{Name: name, NameAr: nameAr, Description: entities.Ptr(r.PostForm.Get("description"))})
		case entities.KindDrugType:
			_, err = h.store.CreateDrugType(r.Context(), &entities.DrugType{Name: name, NameAr: nameAr, Description: entities.Ptr(r.PostForm.Get("description"))})
		case entities.KindManufacturer:
			_, err = h.store.CreateManufacturer(r.Context(), &entities.Manufacturer{Name: name, NameAr: nameAr, Country: entities.Ptr(r.PostForm.Get("country"))})
		default:
			err = fmt.Errorf("%w: %s is not a reference table", entities.ErrInvalidArgument, kind)
		}

		switch {
		case err == nil:
			logging.Info("Reference row created", "table", kind, "name", name)
			flash(r, session.FlashSuccess, "تمت الإضافة بنجاح")
		case entities.IsValidation(err):
			logging.Warn("Reference row rejected", "table", kind, "error", err)
			flash(r, session.FlashError, "الاسم مطلوب")
		default:
			renderError(w, r, "create "+string(kind), err)
			return
		}
		redirect(w, r, kindPath(kind))
	}
}

// DeleteReference removes a classification row in a single click. Medications
// pointing at it keep their captured names.
func (h *HTTPHandlerImpl) DeleteReference(kind entities.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := h.parseID(r)
		if err != nil {
			renderError(w, r, "delete "+string(kind), err)
			return
		}

		err = h.store.Delete(r.Context(), kind, id)
		switch {
		case err == nil:
			logging.Info("Reference row deleted", "table", kind, "id", id)
			flash(r, session.FlashSuccess, "تم الحذف")
		case errors.Is(err, entities.ErrNotFound):
			flash(r, session.FlashError, "السجل غير موجود")
		default:
			renderError(w, r, "delete "+string(kind), err)
			return
		}
		redirect(w, r, kindPath(kind))
	}
}

// ---------------------------------------------------------------------------
// Age/weight, statistics
// ---------------------------------------------------------------------------

type bandView struct {
	Name   string
	Active bool
	Rows   []entities.AgeWeightEstimate
	Chart  stats.LineChart
}

type ageWeightView struct {
	Bands []bandView
}

// AgeWeight renders one tab per age band with its table and weight curve
func (h *HTTPHandlerImpl) AgeWeight(w http.ResponseWriter, r *http.Request) {
	est, err := h.store.ListAgeWeightEstimates(r.Context())
	if err != nil {
		renderError(w, r, "age weight", err)
		return
	}

	active := r.URL.Query().Get("band")
	known := false
	for _, b := range entities.AgeBands {
		known = known || b == active
	}
	if !known {
		active = entities.AgeBands[0]
	}

	view := ageWeightView{}
	for _, b := range entities.AgeBands {
		rows := stats.Band(est, b)
		view.Bands = append(view.Bands, bandView{
			Name:   b,
			Active: b == active,
			Rows:   rows,
			Chart:  stats.NewLineChart(rows, chartWidth, chartHeight),
		})
	}

	render(w, r, http.StatusOK, "age_weight", "تقديرات العمر والوزن", view)
}

type statisticsView struct {
	Total  int
	Charts []stats.BarChart
}

// Statistics renders the distribution charts
func (h *HTTPHandlerImpl) Statistics(w http.ResponseWriter, r *http.Request) {
	meds, err := h.store.ListMedications(r.Context())
	if err != nil {
		renderError(w, r, "statistics", err)
		return
	}

	sum := stats.Summarize(meds)
	view := statisticsView{
		Total: sum.Total,
		Charts: []stats.BarChart{
			stats.NewBarChart("الأدوية حسب الفئة", sum.ByCategory, chartWidth, chartHeight),
			stats.NewBarChart("الأدوية حسب الشكل الصيدلاني", sum.ByForm, chartWidth, chartHeight),
			stats.NewBarChart("أكثر الشركات المصنعة", sum.ByManufacturer, chartWidth, chartHeight),
			stats.NewBarChart("الأدوية حسب التوفر", sum.ByAvailability, chartWidth, chartHeight),
		},
	}

	render(w, r, http.StatusOK, "statistics", "الإحصائيات", view)
}

// ---------------------------------------------------------------------------
// Database view
// ---------------------------------------------------------------------------

type databaseTab struct {
	Kind   entities.Kind
	Label  string
	Count  int
	Active bool
}

type databaseView struct {
	Info        *interfaces.DatabaseInfo
	Size        string
	Tabs        []databaseTab
	Dump        *interfaces.TableDump
	DeleteArmed bool
}

// humanSize formats a byte count with binary units.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

// Database renders the raw tables, the file info and the delete-all buttons
func (h *HTTPHandlerImpl) Database(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	info, err := h.store.Info(ctx)
	if err != nil {
		renderError(w, r, "database", err)
		return
	}

	active, err := entities.ParseKind(r.URL.Query().Get("table"))
	if err != nil {
		active = entities.KindMedication
	}

	dump, err := h.store.RawTable(ctx, active)
	if err != nil {
		renderError(w, r, "database", err)
		return
	}

	view := databaseView{
		Info:        info,
		Size:        humanSize(info.SizeBytes),
		Dump:        dump,
		DeleteArmed: session.FromContext(ctx).IsArmed(actionDeleteAll, string(active)),
	}
	for _, k := range entities.AllKinds {
		view.Tabs = append(view.Tabs, databaseTab{Kind: k, Label: kindLabel(k), Count: info.RowCounts[k], Active: k == active})
	}

	render(w, r, http.StatusOK, "database", "قاعدة البيانات", view)
}

// DeleteAll empties a table on the second click
func (h *HTTPHandlerImpl) DeleteAll(w http.ResponseWriter, r *http.Request) {
	kind, err := entities.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		renderError(w, r, "delete all", err)
		return
	}
	back := "/database?table=" + string(kind)

	sess := session.FromContext(r.Context())
	if !sess.Confirm(actionDeleteAll, string(kind)) {
		metrics.RecordConfirmation(actionDeleteAll, false)
		sess.AddFlash(session.FlashWarning, "اضغط مرة أخرى لتأكيد حذف جميع سجلات "+kindLabel(kind))
		redirect(w, r, back)
		return
	}
	metrics.RecordConfirmation(actionDeleteAll, true)

	n, err := h.store.DeleteAll(r.Context(), kind)
	if err != nil {
		renderError(w, r, "delete all", err)
		return
	}

	logging.Warn("Table emptied", "table", kind, "rows", n)
	sess.AddFlash(session.FlashSuccess, fmt.Sprintf("تم حذف %d سجل من %s", n, kindLabel(kind)))
	redirect(w, r, back)
}

// ---------------------------------------------------------------------------
// Import
// ---------------------------------------------------------------------------

type importView struct {
	Extensions []string
	Preview    *importer.Preview
}

// ImportPage renders the upload form
func (h *HTTPHandlerImpl) ImportPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "import", "استيراد البيانات", importView{Extensions: importer.SupportedExtensions})
}

// ImportPreview shows the columns and first rows of an uploaded spreadsheet
func (h *HTTPHandlerImpl) ImportPreview(w http.ResponseWriter, r *http.Request) {
	view := importView{Extensions: importer.SupportedExtensions}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		logging.Warn("Invalid upload", "error", err)
		flash(r, session.FlashError, "تعذر قراءة الملف المرفوع")
		render(w, r, http.StatusBadRequest, "import", "استيراد البيانات", view)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		flash(r, session.FlashError, "يرجى اختيار ملف")
		render(w, r, http.StatusBadRequest, "import", "استيراد البيانات", view)
		return
	}
	defer file.Close()

	preview, err := h.importer.Preview(header.Filename, file)
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat):
		flash(r, session.FlashError, "صيغة الملف غير مدعومة")
		render(w, r, http.StatusBadRequest, "import", "استيراد البيانات", view)
		return
	case errors.Is(err, importer.ErrEmptyFile):
		flash(r, session.FlashWarning, "الملف فارغ")
		render(w, r, http.StatusOK, "import", "استيراد البيانات", view)
		return
	case err != nil:
		logging.Error("Failed to read spreadsheet", "file", header.Filename, "error", err)
		flash(r, session.FlashError, "تعذر قراءة الملف: "+err.Error())
		render(w, r, http.StatusBadRequest, "import", "استيراد البيانات", view)
		return
	}

	view.Preview = preview
	render(w, r, http.StatusOK, "import", "استيراد البيانات", view)
}

// ImportIngest is a placeholder: mapping spreadsheet columns to medication
// fields is not available yet.
func (h *HTTPHandlerImpl) ImportIngest(w http.ResponseWriter, r *http.Request) {
	if err := h.importer.Ingest(nil); errors.Is(err, importer.ErrNotImplemented) {
		flash(r, session.FlashInfo, "استيراد البيانات إلى قاعدة البيانات غير متاح بعد")
	}
	redirect(w, r, "/import")
}

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/filters"
	"github.com/giygas/medication-catalog/importer"
	"github.com/giygas/medication-catalog/resolver"
	"github.com/giygas/medication-catalog/session"
	"github.com/giygas/medication-catalog/validation"
)

func newTestRouter(store *MockCatalogStore) http.Handler {
	h := NewHTTPHandler(store, validation.NewDataValidator(), &MockHealthChecker{status: "healthy", httpStatus: http.StatusOK}, importer.New(5), 1<<20)

	r := chi.NewRouter()
	r.Use(session.NewManager(time.Hour).Middleware)

	r.Get("/", h.Home)
	r.Get("/medications", h.ListMedications)
	r.Get("/medications/new", h.NewMedication)
	r.Post("/medications", h.CreateMedication)
	r.Get("/medications/{id}", h.ShowMedication)
	r.Post("/medications/{id}/delete", h.DeleteMedication)
	for _, kind := range []entities.Kind{entities.KindCategory, entities.KindDrugType, entities.KindManufacturer} {
		path := kindPath(kind)
		r.Get(path, h.ListReferences(kind))
		r.Post(path, h.CreateReference(kind))
		r.Post(path+"/{id}/delete", h.DeleteReference(kind))
	}
	r.Get("/age-weight", h.AgeWeight)
	r.Get("/statistics", h.Statistics)
	r.Get("/database", h.Database)
	r.Post("/database/{kind}/delete-all", h.DeleteAll)
	r.Get("/import", h.ImportPage)
	r.Post("/import", h.ImportPreview)
	r.Post("/import/ingest", h.ImportIngest)

	r.Get("/api/medications", h.APIListMedications)
	r.Get("/api/medications/{id}", h.APIGetMedication)
	r.Patch("/api/medications/{id}", h.APIUpdateMedication)
	r.Get("/api/statistics", h.APIStatistics)
	r.Get("/api/age-weight", h.APIAgeWeight)
	r.Get("/health", h.HealthCheck)
	return r
}

// testClient replays the session cookie like a browser would.
type testClient struct {
	handler http.Handler
	cookies []*http.Cookie
}

func newTestClient(store *MockCatalogStore) *testClient {
	return &testClient{handler: newTestRouter(store)}
}

func (c *testClient) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	if cs := rec.Result().Cookies(); len(cs) > 0 {
		c.cookies = cs
	}
	return rec
}

func (c *testClient) get(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, target, nil, "")
}

func (c *testClient) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, want, rec.Body.String())
	}
}

func assertContains(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(body, p) {
			t.Errorf("body does not contain %q", p)
		}
	}
}

func assertNotContains(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if strings.Contains(body, p) {
			t.Errorf("body unexpectedly contains %q", p)
		}
	}
}

// seededStore holds the two medications used across the browser tests.
func seededStore() *MockCatalogStore {
	store := NewMockCatalogStore()
	store.add(entities.Medication{
		GenericName:  "Amoxicillin",
		TradeName:    entities.Ptr("Amoxil"),
		CategoryID:   entities.Ptr(int64(1)),
		CategoryName: entities.Ptr("Antibiotics (مضادات حيوية)"),
		Availability: entities.Ptr(entities.AvailabilityAvailable),
		Price:        entities.Ptr(12.5),
	})
	store.add(entities.Medication{
		GenericName:  "Paracetamol",
		TradeName:    entities.Ptr("Calpol"),
		CategoryName: entities.Ptr("Analgesics"),
		Availability: entities.Ptr(entities.AvailabilityRare),
	})
	return store
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, http.StatusNotFound, "medication 9: not found")

	assertStatus(t, rec, http.StatusNotFound)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["error"] != "Not Found" || body["message"] != "medication 9: not found" || body["code"] != float64(404) {
		t.Errorf("body = %v", body)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{entities.Required("generic_name"), http.StatusUnprocessableEntity},
		{entities.ErrNotFound, http.StatusNotFound},
		{entities.ErrInvalidArgument, http.StatusBadRequest},
		{errors.New("disk I/O error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, resolver.Unspecified},
		{"nil string pointer", (*string)(nil), resolver.Unspecified},
		{"blank string", entities.Ptr("  "), resolver.Unspecified},
		{"text", entities.Ptr("250 mg"), "250 mg"},
		{"float", entities.Ptr(12.5), "12.5"},
		{"nil float", (*float64)(nil), resolver.Unspecified},
		{"int", entities.Ptr(int64(6)), "6"},
		{"zero time", time.Time{}, resolver.Unspecified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayValue(tt.in); got != tt.want {
				t.Errorf("displayValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHome(t *testing.T) {
	c := newTestClient(seededStore())

	rec := c.get("/")
	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(), "لوحة المعلومات", "Antibiotics", "مضادات حيوية")

	rec = c.get("/?tab=manufacturers")
	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(), "GSK", "UK")
}

func TestListMedicationsFilters(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    []string
		notWant []string
		count   string
	}{
		{
			name:  "no filters",
			query: url.Values{},
			want:  []string{"Amoxicillin", "Paracetamol"},
			count: "عدد النتائج: 2",
		},
		{
			name:    "search matches trade name case-insensitively",
			query:   url.Values{"q": {"CALPOL"}},
			want:    []string{"Paracetamol"},
			notWant: []string{"Amoxicillin"},
			count:   "عدد النتائج: 1",
		},
		{
			name:    "category matches resolved label",
			query:   url.Values{"category": {"Antibiotics (مضادات حيوية)"}},
			want:    []string{"Amoxicillin"},
			notWant: []string{"Paracetamol"},
			count:   "عدد النتائج: 1",
		},
		{
			name:    "availability",
			query:   url.Values{"availability": {entities.AvailabilityRare}, "category": {filters.All}},
			want:    []string{"Paracetamol"},
			notWant: []string{"Amoxicillin"},
			count:   "عدد النتائج: 1",
		},
		{
			name:  "no match still renders the count",
			query: url.Values{"q": {"zzz"}},
			count: "عدد النتائج: 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(seededStore())
			rec := c.get("/medications?" + tt.query.Encode())

			assertStatus(t, rec, http.StatusOK)
			body := rec.Body.String()
			assertContains(t, body, tt.count)
			assertContains(t, body, tt.want...)
			assertNotContains(t, body, tt.notWant...)
		})
	}
}

func TestListMedicationsRejectsUnusualSearch(t *testing.T) {
	c := newTestClient(seededStore())

	rec := c.get("/medications?" + url.Values{"q": {"x' drop table medications"}}.Encode())

	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(), "عبارة البحث غير صالحة", "عدد النتائج: 2")
}

func TestListMedicationsSelected(t *testing.T) {
	c := newTestClient(seededStore())

	rec := c.get("/medications?selected=2")
	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(), "Calpol", entities.SectionCommercial, "/medications/2/delete")

	rec = c.get("/medications?selected=99")
	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(), "الدواء المحدد غير موجود")
}

func TestShowMedication(t *testing.T) {
	store := NewMockCatalogStore()
	bare := store.add(entities.Medication{GenericName: "Cetirizine"})
	dangling := store.add(entities.Medication{
		GenericName:  "Ibuprofen",
		CategoryID:   entities.Ptr(int64(42)),
		CategoryName: entities.Ptr("NSAIDs"),
	})
	live := store.add(entities.Medication{
		GenericName:  "Amoxicillin",
		CategoryID:   entities.Ptr(int64(1)),
		CategoryName: entities.Ptr("stale name"),
	})
	c := newTestClient(store)

	t.Run("absent fields render unspecified", func(t *testing.T) {
		rec := c.get("/medications/" + itoa(bare))
		assertStatus(t, rec, http.StatusOK)
		body := rec.Body.String()
		assertContains(t, body, "Cetirizine", resolver.Unspecified, entities.SectionNotes, "التواريخ")
	})

	t.Run("dangling reference falls back to captured name", func(t *testing.T) {
		rec := c.get("/medications/" + itoa(dangling))
		assertStatus(t, rec, http.StatusOK)
		assertContains(t, rec.Body.String(), "NSAIDs")
	})

	t.Run("live reference wins over captured name", func(t *testing.T) {
		rec := c.get("/medications/" + itoa(live))
		assertStatus(t, rec, http.StatusOK)
		body := rec.Body.String()
		assertContains(t, body, "Antibiotics (مضادات حيوية)")
		assertNotContains(t, body, "stale name")
	})

	t.Run("not found", func(t *testing.T) {
		rec := c.get("/medications/999")
		assertStatus(t, rec, http.StatusNotFound)
		assertContains(t, rec.Body.String(), "السجل غير موجود")
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := c.get("/medications/abc")
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestNewMedicationForm(t *testing.T) {
	c := newTestClient(seededStore())

	rec := c.get("/medications/new")
	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(),
		`name="generic_name"`, `name="category_id"`, `name="price"`,
		"Antibiotics (مضادات حيوية)", "GSK", entities.AvailabilityRare, entities.Forms[0])
}

func TestCreateMedication(t *testing.T) {
	store := NewMockCatalogStore()
	c := newTestClient(store)

	rec := c.postForm("/medications", url.Values{
		"generic_name":  {"  Ibuprofen "},
		"trade_name":    {""},
		"concentration": {"200 mg"},
		"price":         {"0"},
		"dose_per_kg":   {"7,5"},
		"category_id":   {"2"},
	})
	assertStatus(t, rec, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/medications/1" {
		t.Fatalf("Location = %q", loc)
	}

	m := store.meds[1]
	if m == nil {
		t.Fatal("medication not stored")
	}
	if m.GenericName != "Ibuprofen" {
		t.Errorf("generic name = %q", m.GenericName)
	}
	if m.TradeName != nil || m.Price != nil {
		t.Errorf("blank and zero fields should be absent: trade=%v price=%v", m.TradeName, m.Price)
	}
	if m.DosePerKg == nil || *m.DosePerKg != 7.5 {
		t.Errorf("dose per kg = %v", m.DosePerKg)
	}
	if m.CategoryID == nil || *m.CategoryID != 2 {
		t.Errorf("category id = %v", m.CategoryID)
	}

	rec = c.get("/medications/1")
	assertContains(t, rec.Body.String(), "تمت إضافة الدواء بنجاح", "200 mg")
}

func TestCreateMedicationRejected(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing generic name", url.Values{"trade_name": {"Brufen"}}, "الحقل مطلوب: الاسم العلمي"},
		{"unparseable price", url.Values{"generic_name": {"Ibuprofen"}, "price": {"abc"}}, "قيمة غير صالحة في الحقل: السعر"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMockCatalogStore()
			c := newTestClient(store)

			rec := c.postForm("/medications", tt.form)
			assertStatus(t, rec, http.StatusUnprocessableEntity)
			assertContains(t, rec.Body.String(), tt.want)
			if len(store.meds) != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestCreateMedicationKeepsSubmittedValues(t *testing.T) {
	c := newTestClient(NewMockCatalogStore())

	rec := c.postForm("/medications", url.Values{"trade_name": {"Brufen"}, "category_id": {"1"}})
	assertStatus(t, rec, http.StatusUnprocessableEntity)
	assertContains(t, rec.Body.String(), `value="Brufen"`, `<option value="1" selected>`)
}

func TestDeleteMedicationTwoStep(t *testing.T) {
	store := seededStore()
	c := newTestClient(store)
	c.get("/")

	rec := c.postForm("/medications/1/delete", nil)
	assertStatus(t, rec, http.StatusSeeOther)
	if _, ok := store.meds[1]; !ok {
		t.Fatal("first click must not delete")
	}

	rec = c.get(rec.Header().Get("Location"))
	assertContains(t, rec.Body.String(), "لتأكيد حذف الدواء", "تأكيد الحذف")

	// Another browser's click does not complete this confirmation.
	other := newTestClient(store)
	other.postForm("/medications/1/delete", nil)
	if _, ok := store.meds[1]; !ok {
		t.Fatal("a different session must not confirm")
	}

	rec = c.postForm("/medications/1/delete", nil)
	assertStatus(t, rec, http.StatusSeeOther)
	if _, ok := store.meds[1]; ok {
		t.Fatal("second click should delete")
	}
	if _, ok := store.meds[2]; !ok {
		t.Fatal("other medications must survive")
	}

	rec = c.get(rec.Header().Get("Location"))
	assertContains(t, rec.Body.String(), "تم حذف الدواء")
}

func TestDeleteMedicationConfirmationIsPerTarget(t *testing.T) {
	store := seededStore()
	c := newTestClient(store)
	c.get("/")

	c.postForm("/medications/1/delete", nil)
	c.postForm("/medications/2/delete", nil)

	if len(store.meds) != 2 {
		t.Fatalf("arming two targets must not delete either, have %d", len(store.meds))
	}
}

func TestDeleteMedicationAlreadyGone(t *testing.T) {
	store := seededStore()
	c := newTestClient(store)
	c.get("/")

	c.postForm("/medications/1/delete", nil)
	delete(store.meds, 1)

	rec := c.postForm("/medications/1/delete", nil)
	assertStatus(t, rec, http.StatusSeeOther)
	rec = c.get("/medications")
	assertContains(t, rec.Body.String(), "الدواء غير موجود")
}

func TestReferenceTables(t *testing.T) {
	store := seededStore()
	c := newTestClient(store)

	rec := c.get("/categories")
	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(), "Antibiotics", "Analgesics", "<td>-</td>")

	rec = c.postForm("/categories", url.Values{"name": {"Antivirals"}, "name_ar": {"مضادات الفيروسات"}})
	assertStatus(t, rec, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/categories" {
		t.Errorf("Location = %q", loc)
	}
	if len(store.categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(store.categories))
	}
	rec = c.get("/categories")
	assertContains(t, rec.Body.String(), "تمت الإضافة بنجاح", "Antivirals")

	rec = c.postForm("/manufacturers", url.Values{"name": {"  "}})
	assertStatus(t, rec, http.StatusSeeOther)
	rec = c.get("/manufacturers")
	assertContains(t, rec.Body.String(), "الاسم مطلوب")

	// Single click, no cascade.
	rec = c.postForm("/categories/1/delete", nil)
	assertStatus(t, rec, http.StatusSeeOther)
	if len(store.categories) != 2 {
		t.Errorf("categories = %d, want 2", len(store.categories))
	}
	if _, ok := store.meds[1]; !ok {
		t.Error("medication referencing the category must survive")
	}

	rec = c.get("/medications/1")
	assertContains(t, rec.Body.String(), "Antibiotics (مضادات حيوية)")

	rec = c.postForm("/drug-types/77/delete", nil)
	assertStatus(t, rec, http.StatusSeeOther)
	rec = c.get("/drug-types")
	assertContains(t, rec.Body.String(), "السجل غير موجود")
}

func TestAgeWeight(t *testing.T) {
	c := newTestClient(seededStore())

	rec := c.get("/age-weight")
	assertStatus(t, rec, http.StatusOK)
	body := rec.Body.String()
	assertContains(t, body, "حديث الولادة", "<polyline", entities.AgeBandSchool)
	assertNotContains(t, body, "<td>سنة</td>")

	rec = c.get("/age-weight?" + url.Values{"band": {entities.AgeBandChild}}.Encode())
	assertContains(t, rec.Body.String(), "<td>سنة</td>")

	rec = c.get("/age-weight?" + url.Values{"band": {entities.AgeBandSchool}}.Encode())
	assertContains(t, rec.Body.String(), "لا توجد بيانات")
}

func TestStatistics(t *testing.T) {
	c := newTestClient(seededStore())

	rec := c.get("/statistics")
	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(), "إجمالي الأدوية: 2", `<rect class="bar"`, "Analgesics")

	c = newTestClient(NewMockCatalogStore())
	rec = c.get("/statistics")
	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(), "إجمالي الأدوية: 0", "لا توجد بيانات")
}

func TestDatabaseDeleteAllTwoStep(t *testing.T) {
	store := seededStore()
	c := newTestClient(store)

	rec := c.get("/database?table=categories")
	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(), "test.db", "20.0 KiB", "Antibiotics", "حذف جميع السجلات")

	rec = c.postForm("/database/categories/delete-all", nil)
	assertStatus(t, rec, http.StatusSeeOther)
	if len(store.categories) != 2 {
		t.Fatal("first click must not delete")
	}

	rec = c.get(rec.Header().Get("Location"))
	assertContains(t, rec.Body.String(), "تأكيد حذف جميع السجلات")

	// Confirming a different table does not use this arming.
	c.postForm("/database/medications/delete-all", nil)
	if len(store.meds) != 2 {
		t.Fatal("medications must not be deleted on their first click")
	}

	c.postForm("/database/categories/delete-all", nil)
	if len(store.categories) != 0 {
		t.Errorf("categories = %d, want 0", len(store.categories))
	}
	if len(store.meds) != 2 {
		t.Error("medications must survive emptying categories")
	}

	rec = c.postForm("/database/prescriptions/delete-all", nil)
	assertStatus(t, rec, http.StatusBadRequest)
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestImportPreview(t *testing.T) {
	c := newTestClient(NewMockCatalogStore())

	rec := c.get("/import")
	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(), ".xlsx", `type="file"`)

	body, ct := multipartUpload(t, "drugs.csv", "generic_name,price\nAmoxicillin,12\nParacetamol,3\n")
	rec = c.do(http.MethodPost, "/import", body, ct)
	assertStatus(t, rec, http.StatusOK)
	assertContains(t, rec.Body.String(), "drugs.csv", "<th>generic_name</th>", "<td>Paracetamol</td>", "عدد الصفوف: 2")

	body, ct = multipartUpload(t, "drugs.pdf", "%PDF")
	rec = c.do(http.MethodPost, "/import", body, ct)
	assertStatus(t, rec, http.StatusBadRequest)
	assertContains(t, rec.Body.String(), "صيغة الملف غير مدعومة")

	rec = c.do(http.MethodPost, "/import", strings.NewReader(""), "text/plain")
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestImportIngestNotImplemented(t *testing.T) {
	c := newTestClient(NewMockCatalogStore())

	rec := c.postForm("/import/ingest", nil)
	assertStatus(t, rec, http.StatusSeeOther)

	rec = c.get(rec.Header().Get("Location"))
	assertContains(t, rec.Body.String(), "غير متاح بعد")
}

func TestStoreFailureRendersFlash(t *testing.T) {
	store := seededStore()
	store.err = errors.New("disk I/O error")
	c := newTestClient(store)

	for _, path := range []string{"/", "/medications", "/statistics", "/database", "/age-weight", "/categories"} {
		rec := c.get(path)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: status = %d, want 500", path, rec.Code)
		}
		assertContains(t, rec.Body.String(), "disk I/O error")
	}
}

func newRecorderFor(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

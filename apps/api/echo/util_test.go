package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	. "github.com/pocketcoach/coaching/apps/api/echo"
	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/batch"
	"github.com/pocketcoach/coaching/core/branch"
	"github.com/pocketcoach/coaching/core/student"
	dummydb "github.com/pocketcoach/coaching/storage/database/dummy"
)

type testEnv struct {
	app        Server
	studentSvc student.ServiceInterface
	batchSvc   batch.ServiceInterface
	branchSvc  branch.ServiceInterface
}

type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	batchSvc := batch.NewService(db, dummydb.NewBatchRepository(db))
	branchSvc := branch.NewService(dummydb.NewBranchRepository(db))
	studentSvc := student.NewService(db, dummydb.NewStudentRepository(db), batchSvc)

	conf := &core.Config{
		Env:             "TEST",
		TestMode:        true,
		DefaultPageSize: 15,
		MaxPageSize:     100,
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	app := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testLogger{},
		StudentSvc:     studentSvc,
		BatchSvc:       batchSvc,
		BranchSvc:      branchSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return &testEnv{app: app, studentSvc: studentSvc, batchSvc: batchSvc, branchSvc: branchSvc}
}

func optStrJSON(v string) core.OptString {
	return core.OptString{String: null.StringFrom(v), Set: true}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) bool {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		t.Fatalf("jsonBytesEqual() failed: %v", err)
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		t.Fatalf("jsonBytesEqual() failed: %v", err)
	}
	if reflect.DeepEqual(j1, j2) {
		return true
	}
	if j1 == nil || j2 == nil {
		return false
	}
	return assert.ObjectsAreEqual(j1, j2)
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("status code = %d, want %d; body: %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData != nil {
		if !jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData) {
			t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantData)
		}
	}
}

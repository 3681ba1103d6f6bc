package schema_registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// fakeRegistry is an in-memory stand-in for the registry REST API.
type fakeRegistry struct {
	mu       sync.Mutex
	nextID   int
	schemas  map[int]fakeSchema
	subjects map[string][]int // subject → ids by version (index 0 is version 1)
	requests map[string]int   // "METHOD path" → count
	headers  []http.Header

	// failures makes the next n requests answer 503.
	failures int

	// arrived and release, when set by hold, park the next request
	// until release is closed.
	arrived chan struct{}
	release chan struct{}
}

type fakeSchema struct {
	schema     string
	schemaType string
}

func newFakeRegistry(t *testing.T) (*fakeRegistry, *httptest.Server) {
	t.Helper()

	reg := &fakeRegistry{
		nextID:   100,
		schemas:  make(map[int]fakeSchema),
		subjects: make(map[string][]int),
		requests: make(map[string]int),
	}
	srv := httptest.NewServer(reg)
	t.Cleanup(srv.Close)
	return reg, srv
}

// add registers schema as the next version of subject and returns its id.
func (f *fakeRegistry) add(subject, schema, schemaType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	f.schemas[f.nextID] = fakeSchema{schema: schema, schemaType: schemaType}
	f.subjects[subject] = append(f.subjects[subject], f.nextID)
	return f.nextID
}

// hold parks the next request. arrived is closed once it reaches the
// registry; closing release lets it proceed.
func (f *fakeRegistry) hold() (arrived <-chan struct{}, release chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.arrived = make(chan struct{})
	f.release = make(chan struct{})
	return f.arrived, f.release
}

func (f *fakeRegistry) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[method+" "+path]
}

func (f *fakeRegistry) lastHeader() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.headers) == 0 {
		return nil
	}
	return f.headers[len(f.headers)-1]
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests[r.Method+" "+r.URL.Path]++
	f.headers = append(f.headers, r.Header.Clone())
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	arrived, release := f.arrived, f.release
	f.arrived, f.release = nil, nil
	f.mu.Unlock()

	if arrived != nil {
		close(arrived)
		<-release
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "schemas" && parts[1] == "ids":
		id, _ := strconv.Atoi(parts[2])
		f.serveSchemaByID(w, id)
	case r.Method == http.MethodGet && len(parts) == 4 && parts[0] == "subjects" && parts[2] == "versions":
		f.serveVersion(w, parts[1], parts[3])
	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "subjects" && parts[2] == "versions":
		f.serveRegister(w, r, parts[1])
	case r.Method == http.MethodPost && len(parts) == 5 && parts[0] == "compatibility":
		writeJSON(w, http.StatusOK, map[string]interface{}{"is_compatible": true})
	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error_code": 404, "message": "HTTP 404 Not Found"})
	}
}

func (f *fakeRegistry) serveSchemaByID(w http.ResponseWriter, id int) {
	f.mu.Lock()
	s, ok := f.schemas[id]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error_code": ErrorCodeSchemaNotFound, "message": "Schema not found"})
		return
	}
	body := map[string]interface{}{"schema": s.schema}
	if s.schemaType != "" {
		body["schemaType"] = s.schemaType
	}
	writeJSON(w, http.StatusOK, body)
}

func (f *fakeRegistry) serveVersion(w http.ResponseWriter, subject, version string) {
	f.mu.Lock()
	ids, ok := f.subjects[subject]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error_code": ErrorCodeSubjectNotFound, "message": "Subject '" + subject + "' not found."})
		return
	}

	v := len(ids)
	if version != "latest" {
		v, _ = strconv.Atoi(version)
	}
	if v < 1 || v > len(ids) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error_code": ErrorCodeVersionNotFound, "message": "Version not found."})
		return
	}

	id := ids[v-1]
	f.mu.Lock()
	s := f.schemas[id]
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, Metadata{ID: id, Version: v, Schema: s.schema, Subject: subject, Type: s.schemaType})
}

func (f *fakeRegistry) serveRegister(w http.ResponseWriter, r *http.Request, subject string) {
	var req struct {
		Schema     string `json:"schema"`
		SchemaType string `json:"schemaType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"error_code": 42201, "message": err.Error()})
		return
	}
	id := f.add(subject, req.Schema, req.SchemaType)
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		panic(fmt.Sprintf("fake registry: %v", err))
	}
}

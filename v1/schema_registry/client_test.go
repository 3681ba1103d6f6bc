package schema_registry

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
	"github.com/Aleph-Alpha/schemacache/v1/schemacache"
	"github.com/Aleph-Alpha/schemacache/v1/tracer"
)

const (
	orderV1 = `{"type":"record","name":"Order","namespace":"shop","fields":[
		{"name":"id","type":"string"}
	]}`
	orderV2 = `{"type":"record","name":"Order","namespace":"shop","fields":[
		{"name":"id","type":"string"},
		{"name":"total","type":"Money","default":0}
	]}`
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()

	client, err := NewClient(Config{
		URL:          url,
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
		Cache: schemacache.Config{
			LogicalTypes: schemacache.LogicalTypes{"shop.Money": `"long"`},
		},
	})
	require.NoError(t, err)
	return client
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	_, err = NewClientWithCache(Config{URL: "http://localhost:8081"}, nil)
	assert.Error(t, err)

	client, err := NewClient(Config{URL: "http://localhost:8081/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8081", client.url)
	assert.Equal(t, DefaultRetryMax, client.httpClient.RetryMax)
	assert.Equal(t, DefaultTimeout, client.httpClient.HTTPClient.Timeout)

	client, err = NewClient(Config{URL: "http://localhost:8081", RetryMax: -1})
	require.NoError(t, err)
	assert.Equal(t, 0, client.httpClient.RetryMax)
}

func TestGetSchemaByIDUsesCache(t *testing.T) {
	reg, srv := newFakeRegistry(t)
	id := reg.add("orders-value", orderV2, "")
	client := newTestClient(t, srv.URL)

	schema, err := client.GetSchemaByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, schema.ID())

	again, err := client.GetSchemaByID(context.Background(), id)
	require.NoError(t, err)
	assert.Same(t, schema, again)

	assert.Equal(t, 1, reg.count(http.MethodGet, "/schemas/ids/101"))

	// the global logical type table was applied at compile time
	rec := schema.Schema().(*avro.RecordSchema)
	assert.Equal(t, avro.Long, rec.Fields()[1].Type().Type())
}

func TestGetRegistryIDBySchemaRefSurvivesClear(t *testing.T) {
	reg, srv := newFakeRegistry(t)
	id := reg.add("orders-value", orderV1, "")
	client := newTestClient(t, srv.URL)
	ref := schemacache.SchemaRef{Subject: "orders-value", Version: 1}

	got, err := client.GetRegistryIDBySchemaRef(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, ok := client.Cache().GetSchema(id)
	assert.True(t, ok, "fetching a version compiles its schema")

	client.ClearCache()

	got, err = client.GetRegistryIDBySchemaRef(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, 1, reg.count(http.MethodGet, "/subjects/orders-value/versions/1"))
}

func TestGetLatestRegistryIDIsResetByClear(t *testing.T) {
	reg, srv := newFakeRegistry(t)
	first := reg.add("orders-value", orderV1, "")
	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	got, err := client.GetLatestRegistryID(ctx, "orders-value")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	// latest also records the pinned version it resolved to
	id, ok := client.Cache().GetBySchemaRef(schemacache.SchemaRef{Subject: "orders-value", Version: 1})
	require.True(t, ok)
	assert.Equal(t, first, id)

	second := reg.add("orders-value", orderV2, "")

	got, err = client.GetLatestRegistryID(ctx, "orders-value")
	require.NoError(t, err)
	assert.Equal(t, first, got, "cached latest id is served until cleared")

	client.ClearCache()

	got, err = client.GetLatestRegistryID(ctx, "orders-value")
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.Equal(t, 2, reg.count(http.MethodGet, "/subjects/orders-value/versions/latest"))
}

func TestRegistryErrors(t *testing.T) {
	reg, srv := newFakeRegistry(t)
	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	t.Run("schema not found", func(t *testing.T) {
		_, err := client.GetSchemaByID(ctx, 999)
		require.Error(t, err)
		assert.True(t, IsNotFoundError(err))

		var regErr *RegistryError
		require.True(t, errors.As(err, &regErr))
		assert.Equal(t, ErrorCodeSchemaNotFound, regErr.ErrorCode)
		assert.Equal(t, "Schema not found", regErr.Message)

		_, ok := client.Cache().GetSchema(999)
		assert.False(t, ok)
	})

	t.Run("subject not found", func(t *testing.T) {
		_, err := client.GetLatestRegistryID(ctx, "missing")
		assert.True(t, IsNotFoundError(err))

		_, ok := client.Cache().GetLatestID("missing")
		assert.False(t, ok)
	})

	t.Run("uncompilable schema", func(t *testing.T) {
		id := reg.add("broken", `{"type":"record","name":"B","fields":[{"name":"x","type":"Nope"}]}`, "")
		_, err := client.GetSchemaByID(ctx, id)
		assert.True(t, schemacache.IsCompilationError(err))
	})

	t.Run("unsupported schema type", func(t *testing.T) {
		id := reg.add("proto", `syntax = "proto3";`, "PROTOBUF")
		_, err := client.GetSchemaByID(ctx, id)
		assert.ErrorIs(t, err, ErrUnsupportedSchemaType)
	})
}

func TestRetriesTransientFailures(t *testing.T) {
	reg, srv := newFakeRegistry(t)
	id := reg.add("orders-value", orderV1, "")
	client := newTestClient(t, srv.URL)

	reg.mu.Lock()
	reg.failures = 2
	reg.mu.Unlock()

	_, err := client.GetSchemaByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.count(http.MethodGet, "/schemas/ids/101"))

	reg.mu.Lock()
	reg.failures = 10
	reg.mu.Unlock()

	_, err = client.GetLatestSchema(context.Background(), "orders-value")
	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, http.StatusServiceUnavailable, regErr.StatusCode)
}

func TestRegisterAndCheckCompatibility(t *testing.T) {
	reg, srv := newFakeRegistry(t)
	client, err := NewClient(Config{URL: srv.URL, Username: "user", Password: "secret"})
	require.NoError(t, err)
	ctx := context.Background()

	id, err := client.RegisterSchema(ctx, "orders-value", orderV1, "AVRO")
	require.NoError(t, err)
	assert.Equal(t, 101, id)

	_, ok := client.Cache().GetSchema(id)
	assert.True(t, ok, "registered schema is compiled into the cache")

	user, pass, ok := (&http.Request{Header: reg.lastHeader()}).BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "user", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, contentType, reg.lastHeader().Get("Content-Type"))

	compatible, err := client.CheckCompatibility(ctx, "orders-value", orderV1, "")
	require.NoError(t, err)
	assert.True(t, compatible)
}

func TestEncodeDecode(t *testing.T) {
	reg, srv := newFakeRegistry(t)
	id := reg.add("orders-value", orderV2, "")
	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	type order struct {
		ID    string `avro:"id"`
		Total int64  `avro:"total"`
	}

	encoded, err := client.EncodeLatest(ctx, "orders-value", order{ID: "o-1", Total: 1250})
	require.NoError(t, err)
	header, err := EncodeSchemaID(id)
	require.NoError(t, err)
	assert.Equal(t, header, encoded[:5])

	// a fresh client resolves the id from the header
	other := newTestClient(t, srv.URL)
	var decoded order
	require.NoError(t, other.Decode(ctx, encoded, &decoded))
	assert.Equal(t, order{ID: "o-1", Total: 1250}, decoded)

	assert.ErrorIs(t, other.Decode(ctx, []byte{1, 2}, &decoded), ErrInvalidWireFormat)
}

func TestWireFormat(t *testing.T) {
	header, err := EncodeSchemaID(258)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 1, 2}, header)

	header, err = EncodeSchemaID(math.MaxUint32)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0xff, 0xff, 0xff, 0xff}, header)

	id, payload, err := DecodeSchemaID([]byte{0, 0, 0, 1, 2, 'x'})
	require.NoError(t, err)
	assert.Equal(t, 258, id)
	assert.Equal(t, []byte("x"), payload)

	_, _, err = DecodeSchemaID([]byte{0, 0, 0})
	assert.ErrorIs(t, err, ErrInvalidWireFormat)

	_, _, err = DecodeSchemaID([]byte{1, 0, 0, 0, 1})
	assert.ErrorIs(t, err, ErrInvalidWireFormat)
}

func TestEncodeSchemaIDOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		id   int
	}{
		{"negative", -1},
		{"above uint32", math.MaxUint32 + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, err := EncodeSchemaID(tt.id)
			assert.ErrorIs(t, err, ErrSchemaIDOutOfRange)
			assert.Nil(t, header)
		})
	}
}

func TestEncodeRejectsOutOfRangeIDWithoutFetching(t *testing.T) {
	reg, srv := newFakeRegistry(t)
	client := newTestClient(t, srv.URL)

	_, err := client.Encode(context.Background(), -7, map[string]interface{}{"id": "o-1"})
	assert.ErrorIs(t, err, ErrSchemaIDOutOfRange)
	assert.Equal(t, 0, reg.count(http.MethodGet, "/schemas/ids/-7"))
}

func TestNonAvroSubjectsResolveIDs(t *testing.T) {
	reg, srv := newFakeRegistry(t)
	id := reg.add("events-proto", `syntax = "proto3";`, "PROTOBUF")
	client := newTestClient(t, srv.URL)
	ctx := context.Background()
	ref := schemacache.SchemaRef{Subject: "events-proto", Version: 1}

	got, err := client.GetRegistryIDBySchemaRef(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	cached, ok := client.Cache().GetBySchemaRef(ref)
	require.True(t, ok)
	assert.Equal(t, id, cached)

	latest, err := client.GetLatestRegistryID(ctx, "events-proto")
	require.NoError(t, err)
	assert.Equal(t, id, latest)

	_, ok = client.Cache().GetSchema(id)
	assert.False(t, ok, "non-Avro schemas are never compiled")

	_, err = client.GetSchemaByID(ctx, id)
	assert.ErrorIs(t, err, ErrUnsupportedSchemaType)
}

func TestCanceledCallerDoesNotAbortSharedFetch(t *testing.T) {
	reg, srv := newFakeRegistry(t)
	id := reg.add("orders-value", orderV1, "")
	client := newTestClient(t, srv.URL)

	arrived, release := reg.hold()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := client.GetSchemaByID(ctx, id)
		errCh <- err
	}()

	<-arrived
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)

	// the fetch started by the canceled caller still completes and fills the cache
	assert.Eventually(t, func() bool {
		_, ok := client.Cache().GetSchema(id)
		return ok
	}, time.Second, 5*time.Millisecond)

	schema, err := client.GetSchemaByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, schema.ID())
	assert.Equal(t, 1, reg.count(http.MethodGet, "/schemas/ids/101"))
}

type recordingObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (r *recordingObserver) ObserveOperation(ctx observability.OperationContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, ctx)
}

func TestObserverAndTracer(t *testing.T) {
	reg, srv := newFakeRegistry(t)
	id := reg.add("orders-value", orderV1, "")

	recorder := tracetest.NewSpanRecorder()
	tr, err := tracer.NewClient(tracer.Config{ServiceName: "test"}, trace.WithSpanProcessor(recorder))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })

	obs := &recordingObserver{}
	client := newTestClient(t, srv.URL).WithObserver(obs).WithTracer(tr)

	_, err = client.GetSchemaByID(context.Background(), id)
	require.NoError(t, err)
	_, err = client.GetSchemaByID(context.Background(), 404)
	require.Error(t, err)

	require.Len(t, obs.ops, 2)
	assert.Equal(t, "schema_registry", obs.ops[0].Component)
	assert.Equal(t, "fetch_schema_by_id", obs.ops[0].Operation)
	assert.Equal(t, "/schemas/ids/101", obs.ops[0].SubResource)
	assert.Equal(t, "success", obs.ops[0].Result())
	assert.Equal(t, "error", obs.ops[1].Result())

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "schema_registry.fetch_schema_by_id", spans[0].Name())
	assert.NotEmpty(t, reg.lastHeader().Get("traceparent"))
}

func TestToFields(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"url": "http://x", "retry": 2}, toFields([]interface{}{"url", "http://x", "retry", 2}))
	assert.Equal(t, map[string]interface{}{"dangling": nil}, toFields([]interface{}{"dangling"}))
}

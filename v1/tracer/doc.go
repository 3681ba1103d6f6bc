// Package tracer provides OpenTelemetry tracing for registry round-trips.
//
// The schema registry client starts one span per network fetch when a
// *Tracer is attached; cache hits are not traced.
//
//	t, err := tracer.NewClient(tracer.Config{ServiceName: "orders", EnableExport: true})
//	if err != nil {
//	    return err
//	}
//	defer t.Shutdown(context.Background())
//
//	client, err := schema_registry.NewClient(cfg)
//	client.WithTracer(t)
package tracer

package tracing

import (
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer trace.Tracer = otel.Tracer("fittrack-backend")

// HoneycombSetup configures the OpenTelemetry SDK via the honeycomb
// otel-config distro. Returns a shutdown func, a no-op one when
// tracing is disabled.
func HoneycombSetup(enabled bool, serviceName string) (func(), error) {
	if !enabled {
		log.Debugln("tracing disabled, otel sdk not configured")
		return func() {}, nil
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
	)
	if err != nil {
		return nil, err
	}

	log.Debugf("otel sdk configured, service name: %s", serviceName)
	return otelShutdown, nil
}

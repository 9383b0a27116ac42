package tracer

// Config defines the tracer settings.
type Config struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv is reported as deployment.environment.
	AppEnv string `yaml:"app_env" envconfig:"APP_ENV"`

	// EnableExport ships spans through an OTLP HTTP exporter configured by the
	// standard OTEL_EXPORTER_OTLP_* environment variables. When false spans
	// are created and propagated but never exported.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`
}

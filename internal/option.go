package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	serve  bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithServe keeps the process alive after the initial conversion, serving
// the archive over HTTP and re-converting on export changes.
func WithServe(serve bool) Option {
	return func(a *application) {
		a.serve = serve
	}
}

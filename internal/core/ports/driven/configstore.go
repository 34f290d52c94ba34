package driven

// ConfigStore persists flat, dot-separated configuration keys such as
// "embedding.model". Values are strings, ints or durations rendered as strings.
type ConfigStore interface {
	// Get returns the value stored under key.
	Get(key string) (any, bool)

	// Set stores one value and persists it.
	Set(key string, value any) error

	// SetAll stores every value and persists them in a single write.
	SetAll(values map[string]any) error

	// Path returns where the configuration lives.
	Path() string
}

package translator

import "errors"

var (
	// ErrEmptyText rejects a request whose text normalizes to nothing.
	ErrEmptyText = errors.New("empty input text")
	// ErrMissingLanguage rejects a request whose mode requires a
	// language the caller did not supply.
	ErrMissingLanguage = errors.New("missing language for mode")
	// ErrUnknownMode rejects a request with a mode this service does
	// not implement.
	ErrUnknownMode = errors.New("unknown request mode")
	// ErrNoTranslations means the provider answered but every requested
	// target came back empty, refill included.
	ErrNoTranslations = errors.New("no translations returned")
)

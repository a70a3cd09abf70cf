package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *SiteError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *SiteError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *SiteError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Filesystem errors

func SourceDirUnreadable(dir string, cause error) *SiteError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "source directory unreadable").
		WithContext("dir", dir)
}

func TargetWriteFailed(path string, cause error) *SiteError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "writing rendered output failed").
		WithContext("path", path)
}

// IntermediateExists reports a checked-in file sitting where a markup
// source would write its generated HTML.
func IntermediateExists(path, source string) *SiteError {
	return New(CategoryFileSystem, SeverityFatal, "intermediate file already exists").
		WithContext("path", path).
		WithContext("source", source)
}

// Markup errors

func MarkupParse(path string, cause error) *SiteError {
	return Wrap(cause, CategoryMarkup, SeverityFatal, "markup conversion failed").
		WithContext("path", path)
}

// Template errors

func TemplateNotFound(name string, cause error) *SiteError {
	return Wrap(cause, CategoryTemplate, SeverityFatal, "resolving page template").
		WithContext("template", name)
}

func TemplateRender(name string, cause error) *SiteError {
	return Wrap(cause, CategoryTemplate, SeverityFatal, "rendering page template").
		WithContext("template", name)
}

// Network errors

func FeedFetch(uri string, cause error) *SiteError {
	return Wrap(cause, CategoryNetwork, SeverityFatal, "feed fetch failed").
		WithContext("uri", uri)
}

// Internal errors

func InternalError(message string, cause error) *SiteError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}

// Package templates renders Django-style page templates (`{% extends %}`,
// `{% block %}`, `{% include %}`) from the site source directory, encodes
// the result and writes it to the target directory.
package templates

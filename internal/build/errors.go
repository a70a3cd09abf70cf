package build

import (
	"errors"

	derrors "git.home.luguber.info/inful/sitegen/internal/docs/errors"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/templates"
)

// classifyDiscoveryError maps source listing failures onto the error taxonomy.
func classifyDiscoveryError(sourceDir string, err error) error {
	switch {
	case errors.Is(err, derrors.ErrIntermediateExists):
		return serrors.Wrap(err, serrors.CategoryFileSystem, serrors.SeverityFatal, "intermediate file already exists").
			WithContext("dir", sourceDir)
	case errors.Is(err, derrors.ErrSourceDirNotFound),
		errors.Is(err, derrors.ErrSourceNotDir),
		errors.Is(err, derrors.ErrSourceDirReadFailed):
		return serrors.SourceDirUnreadable(sourceDir, err)
	default:
		return serrors.InternalError("source discovery failed", err)
	}
}

// classifyTemplateError maps engine failures onto the error taxonomy.
func classifyTemplateError(name string, err error) error {
	if errors.Is(err, templates.ErrTemplateNotFound) {
		return serrors.TemplateNotFound(name, err)
	}
	return serrors.TemplateRender(name, err)
}

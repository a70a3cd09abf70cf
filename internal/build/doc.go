// Package build provides the render pipeline of sitegen.
//
// A run fetches the feed once, lists the source directory, refuses to start
// when a markup source would overwrite a checked-in HTML file, and then
// renders every eligible file in name order into the target directory.
// Markup sources are converted to an intermediate template next to their
// source; that file is removed again whatever the outcome of the render.
//
// All execution paths (render command, watch mode, tests) go through
// Service.
package build

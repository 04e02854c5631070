// Package metrics provides internal metrics collection for the workflow
// executor. This package is internal and should not be imported by
// external projects.
package metrics
